// Package config handles configuration loading and management for cadre.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProjectConfigName is the project-level config file searched for in the
// working directory and its parents.
const ProjectConfigName = ".cadre.yaml"

// EnvPrefix prefixes every environment override, e.g. CADRE_ENGINE_MAX_TEAM_SIZE.
const EnvPrefix = "CADRE"

// Config holds all configuration for cadre.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Roster   RosterConfig   `mapstructure:"roster"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	State    StateConfig    `mapstructure:"state"`
	Learning LearningConfig `mapstructure:"learning"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
}

// EngineConfig holds delegation engine settings.
type EngineConfig struct {
	MaxTeamSize      int    `mapstructure:"max_team_size"`
	AuthenticContext string `mapstructure:"authentic_context"`
}

// CatalogConfig points at an agent catalog file. An empty path uses the
// built-in catalog.
type CatalogConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// RosterConfig points at a worker roster file. An empty path uses the
// built-in roster.
type RosterConfig struct {
	Path string `mapstructure:"path"`
}

// SnapshotConfig holds the session snapshot location.
type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

// StateConfig holds the state database location.
type StateConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LearningConfig holds the pattern archive location.
type LearningConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	DebugFile string `mapstructure:"debug_file"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (CADRE_*)
// 2. Project config (.cadre.yaml in current directory or parent)
// 3. User config (~/.config/cadre/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
// Environment overrides still apply.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)

	return unmarshal(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Engine.MaxTeamSize < 1 {
		return fmt.Errorf("engine.max_team_size must be at least 1, got %d", c.Engine.MaxTeamSize)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	return nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	for key, value := range Settings(cfg) {
		v.Set(key, value)
	}
	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()
	for key, value := range Settings(d) {
		v.SetDefault(key, value)
	}
}

// getUserConfigDir returns the XDG config directory for cadre.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cadre")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "cadre")
	}
	return filepath.Join(home, ".config", "cadre")
}

// findProjectConfig searches for .cadre.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxTeamSize:      3,
			AuthenticContext: "authentic-collaboration",
		},
		Snapshot: SnapshotConfig{
			Path: filepath.Join(".cadre", "session.json"),
		},
		State: StateConfig{
			DBPath: filepath.Join(".cadre", "state.db"),
		},
		Learning: LearningConfig{
			DBPath: filepath.Join(".cadre", "learnings.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 5 * time.Second,
		},
	}
}
