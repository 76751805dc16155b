package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		URL:     "https://api.example.com",
		Timeout: 30 * time.Second,
		Resolve: ResolveConfig{Git: true},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.Resolve.Git)
	assert.Equal(t, 0, cfg.Resolve.Jobs)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MINDFLOW_URL", "https://api.example.com/")
	t.Setenv("MINDFLOW_TIMEOUT", "5s")
	t.Setenv("MINDFLOW_RESOLVE_GIT", "false")
	t.Setenv("MINDFLOW_RESOLVE_JOBS", "4")
	t.Setenv("MINDFLOW_LOGGING_LEVEL", "debug")
	t.Setenv("MINDFLOW_STORAGE_URI", "sqlite:///tmp/staged.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.URL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.Resolve.Git)
	assert.Equal(t, 4, cfg.Resolve.Jobs)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sqlite:///tmp/staged.db", cfg.Storage.URI)
}

func TestReadConfigFile(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, ".config", "mindflow")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
url: https://files.example.com
resolve:
  jobs: 2
logging:
  format: json
`), 0600))

	v := NewViper()
	require.NoError(t, ReadConfigFile(v, "", home))
	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://files.example.com", cfg.URL)
	assert.Equal(t, 2, cfg.Resolve.Jobs)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestReadConfigFile_MissingDefaultIsFine(t *testing.T) {
	v := NewViper()
	assert.NoError(t, ReadConfigFile(v, "", t.TempDir()))
	assert.NoError(t, ReadConfigFile(v, "", ""))
}

func TestReadConfigFile_MissingExplicitFails(t *testing.T) {
	v := NewViper()
	err := ReadConfigFile(v, filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "empty URL is allowed",
			mutate: func(c *Config) { c.URL = "" },
		},
		{
			name:      "malformed URL",
			mutate:    func(c *Config) { c.URL = "not a url" },
			wantError: true,
		},
		{
			name:      "negative jobs",
			mutate:    func(c *Config) { c.Resolve.Jobs = -1 },
			wantError: true,
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Logging.Level = "trace" },
			wantError: true,
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Logging.Format = "xml" },
			wantError: true,
		},
		{
			name:      "unsupported storage scheme",
			mutate:    func(c *Config) { c.Storage.URI = "s3://bucket/outbox" },
			wantError: true,
		},
		{
			name:   "sqlite storage",
			mutate: func(c *Config) { c.Storage.URI = "sqlite:///tmp/staged.db" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	cfg := validConfig()
	url, err := cfg.ResolveURL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", url)

	cfg.URL = ""
	_, err = cfg.ResolveURL()
	require.Error(t, err)
	assert.Contains(t, err.Error(), URLEnvVar)
}

func TestStorageURI(t *testing.T) {
	cfg := validConfig()

	uri, err := cfg.StorageURI("/home/me")
	require.NoError(t, err)
	assert.Equal(t, "file", uri.Scheme)
	assert.Equal(t, filepath.Join("/home/me", ".cache", "mindflow", "staged.json"), uri.Path)

	_, err = cfg.StorageURI("")
	assert.Error(t, err)

	cfg.Storage.URI = "sqlite:///tmp/staged.db"
	uri, err = cfg.StorageURI("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", uri.Scheme)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://a.example.com", NormalizeURL("https://a.example.com///"))
	assert.Equal(t, "", NormalizeURL(""))
}
