package cmd

import (
	"fmt"
	"os"

	"github.com/kayz/promptsmith/internal/config"
	"github.com/kayz/promptsmith/internal/persist"
	"github.com/kayz/promptsmith/internal/promptbuild"
)

// currentConfig returns the config loaded by the root command, or the
// defaults when a command runs without it.
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// loadPromptFile reads a prompt file. Files that do not choose an encoding
// get the configured default.
func loadPromptFile(path string) (*promptbuild.Builder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file %s: %w", path, err)
	}
	cfg, err := promptbuild.ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("prompt file %s: %w", path, err)
	}
	if cfg.RenderEncoding == "" {
		if enc, ok := promptbuild.ParseEncoding(currentConfig().Render.Encoding); ok {
			cfg.RenderEncoding = enc
		}
	}
	return promptbuild.FromConfig(cfg), nil
}

// loadPrompt loads a prompt from a file, or from the store when saved is
// set.
func loadPrompt(path, saved string) (*promptbuild.Builder, error) {
	if saved != "" {
		store, err := openStore()
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadBuilder(saved)
	}
	if path == "" {
		return nil, fmt.Errorf("a prompt file or --saved NAME is required")
	}
	return loadPromptFile(path)
}

func openStore() (*persist.Store, error) {
	path := currentConfig().Store.Path
	if path == "" {
		path = config.DefaultConfig().Store.Path
	}
	store, err := persist.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// writeOutput writes text to path, or to stdout when path is empty.
func writeOutput(path, text string) error {
	if path == "" {
		fmt.Println(text)
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
