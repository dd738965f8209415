package cmd

import (
	"fmt"
	"os"

	"github.com/kayz/promptsmith/internal/config"
	"github.com/kayz/promptsmith/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "promptsmith",
	Short: "Compose, validate and export agent system prompts",
	Long: `promptsmith builds system prompts from declarative prompt files.

Commands:
  promptsmith render FILE       Render a prompt file
  promptsmith validate FILE     Report problems in a prompt file
  promptsmith inspect FILE      Show what a prompt file declares
  promptsmith export FILE       Export config or agent tool descriptors
  promptsmith merge BASE FILE.. Merge prompt files into one
  promptsmith serve FILE        Serve the prompt's tools over MCP stdio
  promptsmith save NAME FILE    Store a prompt file under a name
  promptsmith list              List stored prompts
  promptsmith history [NAME]    Show stored renders`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg

		// Flag wins over the config file
		levelName := cfg.Logging.Level
		if cmd.Flags().Changed("log") || levelName == "" {
			levelName = logLevel
		}
		level, err := logger.ParseLevel(levelName)
		if err != nil {
			return err
		}
		logger.SetLevel(level)

		return logger.SetOutputFile(cfg.Logging.File)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: .promptsmith.yaml next to the executable)")
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
