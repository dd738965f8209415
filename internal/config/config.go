package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	Render     RenderConfig     `yaml:"render"`
	Validation ValidationConfig `yaml:"validation"`
	Audit      AuditConfig      `yaml:"audit"`
	Store      StoreConfig      `yaml:"store"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// RenderConfig sets defaults applied to prompt files that do not choose an
// encoding themselves.
type RenderConfig struct {
	Encoding string `yaml:"encoding"` // "structured", "dense" or "compacted"
}

// ValidationConfig switches validator checks off.
type ValidationConfig struct {
	DisableIdentityCheck        bool `yaml:"disable_identity_check"`
	DisableToolDescriptionCheck bool `yaml:"disable_tool_description_check"`
	DisableToolNameCheck        bool `yaml:"disable_tool_name_check"`
	DisableConflictCheck        bool `yaml:"disable_conflict_check"`
	DisableGuardrailsCheck      bool `yaml:"disable_guardrails_check"`
	DisableRecommendations      bool `yaml:"disable_recommendations"`
}

// AuditConfig controls the JSONL render audit trail.
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	RootDir       string `yaml:"root_dir,omitempty"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
	FilePrefix    string `yaml:"file_prefix"`
}

// StoreConfig locates the SQLite database for saved prompts and render
// history.
type StoreConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Encoding: "structured",
		},
		Audit: AuditConfig{
			Enabled:       false,
			Dir:           ".promptsmith/audit",
			RetentionDays: 7,
			FilePrefix:    "render",
		},
		Store: StoreConfig{
			Path: filepath.Join(ConfigDir(), "promptsmith.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func ConfigDir() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".promptsmith")
}

func ConfigPath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".promptsmith.yaml")
}

// Load reads the config next to the executable. A missing file yields the
// defaults.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath reads config from path on top of the defaults, then applies
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("PROMPTSMITH_ENCODING")); v != "" {
		c.Render.Encoding = v
	}
	if v := strings.TrimSpace(os.Getenv("PROMPTSMITH_STORE")); v != "" {
		c.Store.Path = v
	}
}

func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
