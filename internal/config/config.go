package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"

	"github.com/mindflowai/mindflow/internal/storage"
)

const (
	// EnvPrefix is prepended to every environment variable (MINDFLOW_URL, ...)
	EnvPrefix = "MINDFLOW"

	// URLEnvVar is the environment variable for the server URL
	URLEnvVar = "MINDFLOW_URL"
)

// Config holds all configuration for the CLI
type Config struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	Storage StorageConfig `mapstructure:"storage"`
	Resolve ResolveConfig `mapstructure:"resolve"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig locates the staging outbox
type StorageConfig struct {
	URI string `mapstructure:"uri"` // e.g. file:///home/me/.cache/mindflow/staged.json
}

// ResolveConfig controls path resolution
type ResolveConfig struct {
	Git  bool `mapstructure:"git"`  // use the git index inside repositories
	Jobs int  `mapstructure:"jobs"` // concurrent file reads, 0 = GOMAXPROCS
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text
}

// NewViper creates a new viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("url", "")
	v.SetDefault("token", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("storage.uri", "")
	v.SetDefault("resolve.git", true)
	v.SetDefault("resolve.jobs", 0)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	// Bind environment variables with MINDFLOW_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadConfigFile merges a YAML config file into v.
// An explicit path must exist; otherwise $HOME/.config/mindflow/config.yaml is optional.
func ReadConfigFile(v *viper.Viper, explicitPath, home string) error {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", explicitPath, err)
		}
		return nil
	}

	if home == "" {
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(home, ".config", "mindflow"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// LoadWithViper loads configuration using a pre-configured viper instance
// This allows CLI flags to be bound before loading
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.URL = NormalizeURL(cfg.URL)
	return &cfg, nil
}

// Load loads configuration from environment variables and defaults
func Load() (*Config, error) {
	return LoadWithViper(NewViper())
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.URL, is.RequestURL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if c.Storage.URI != "" {
		if _, err := storage.ParseStorageURI(c.Storage.URI); err != nil {
			return fmt.Errorf("invalid storage URI: %w", err)
		}
	}
	if err := c.Resolve.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// Validate validates the resolve configuration
func (c *ResolveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Jobs, validation.Min(0), validation.Max(256)),
	)
}

// Validate validates the logging configuration
func (c *LoggingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.Required, validation.In("json", "text")),
	)
}

// ResolveURL returns the configured server URL or an error naming how to set one
func (c *Config) ResolveURL() (string, error) {
	if c.URL == "" {
		return "", fmt.Errorf("no server URL configured. Use --url flag, %s env var, or the url key in the config file", URLEnvVar)
	}
	return c.URL, nil
}

// StorageURI returns the configured outbox URI, defaulting under home
func (c *Config) StorageURI(home string) (*storage.StorageURI, error) {
	raw := c.Storage.URI
	if raw == "" {
		if home == "" {
			return nil, fmt.Errorf("no storage URI configured and HOME is not set")
		}
		raw = DefaultStorageURI(home)
	}
	return storage.ParseStorageURI(raw)
}

// DefaultStorageURI is the outbox location used when none is configured
func DefaultStorageURI(home string) string {
	return "file://" + filepath.Join(home, ".cache", "mindflow", "staged.json")
}

// NormalizeURL removes trailing slashes from URLs
func NormalizeURL(url string) string {
	return strings.TrimRight(url, "/")
}
