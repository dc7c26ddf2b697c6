package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/continuity/internal/consistency"
)

const appName = "continuity"

type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" validate:"required"`
	Output   OutputConfig   `yaml:"output" validate:"required"`
	Log      LogConfig      `yaml:"log"`
	Watch    WatchConfig    `yaml:"watch" validate:"required"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir" validate:"required"`
	Format string `yaml:"format" validate:"required,oneof=text json yaml"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns a complete configuration that needs no config file
func Default() *Config {
	return &Config{
		Analysis: DefaultAnalysis(),
		Output: OutputConfig{
			Dir:    defaultOutputDir(),
			Format: "text",
		},
		Log:   LogConfig{Level: "info"},
		Watch: DefaultWatch(),
	}
}

// Load reads .env, then the config file from the resolved path. A missing
// config file is not an error; defaults apply.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(getConfigPath())
}

// LoadFrom reads the config file at path over the defaults
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Path is the config file location Load reads
func Path() string {
	return getConfigPath()
}

func getConfigPath() string {
	// 1. Explicit config path via environment variable
	if path := os.Getenv("CONTINUITY_CONFIG"); path != "" {
		return path
	}

	// 2. XDG_CONFIG_HOME (XDG Base Directory Specification)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName, "config.yaml")
	}

	// 3. Default to ~/.config/continuity/config.yaml (XDG fallback)
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, "config.yaml")
}

func defaultOutputDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, appName, "reports")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName, "reports")
}

func (c *Config) applyEnv() {
	if level := os.Getenv("CONTINUITY_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(strings.TrimSpace(level))
	}
	if dir := os.Getenv("CONTINUITY_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
}

// expandTilde expands a tilde (~) at the beginning of a path to the user's home directory
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (c *Config) validate() error {
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir()
	} else {
		c.Output.Dir = expandTilde(c.Output.Dir)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// SlogLevel maps the configured level name onto slog
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EngineOptions builds the engine options the configuration describes
func (c *Config) EngineOptions(logger *slog.Logger) []consistency.Option {
	opts := []consistency.Option{
		consistency.WithLogger(logger),
		consistency.WithThresholds(c.Analysis.Thresholds.ToThresholds()),
		consistency.WithParallelism(c.Analysis.Parallelism),
	}
	if len(c.Analysis.Disabled) > 0 {
		opts = append(opts, consistency.WithoutDetectors(c.Analysis.Disabled...))
	}
	return opts
}

// Save writes the configuration as YAML, creating the directory if needed
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
