package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "4201", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:4201", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout())

	// Probe config
	assert.Equal(t, "/proc", cfg.Probe.ProcRoot)
	assert.Empty(t, cfg.Probe.BaseDir)
	assert.Equal(t, int64(8<<20), cfg.Probe.MaxReadBytes)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "4201", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	base := t.TempDir()
	envVars := map[string]string{
		"HOSTAGENT_PORT":               "9000",
		"HOSTAGENT_HOST":               "127.0.0.1",
		"HOSTAGENT_CORS_ORIGINS":       "http://a.test,http://b.test",
		"HOSTAGENT_PROC_ROOT":          "/host/proc",
		"HOSTAGENT_BASE_DIR":           base,
		"HOSTAGENT_MAX_READ_BYTES":     "1024",
		"HOSTAGENT_LOG_LEVEL":          "debug",
		"HOSTAGENT_LOG_DEV":            "true",
		"HOSTAGENT_RATE_LIMIT_RPS":     "500",
		"HOSTAGENT_RATE_LIMIT_BURST":   "1000",
		"HOSTAGENT_RATE_LIMIT_ENABLED": "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/host/proc", cfg.Probe.ProcRoot)
	assert.Equal(t, base, cfg.Probe.BaseDir)
	assert.Equal(t, int64(1024), cfg.Probe.MaxReadBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("HOSTAGENT_PORT", "3000")
	t.Setenv("HOSTAGENT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/proc", cfg.Probe.ProcRoot)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeConfig(t, "agent.yaml", `
server:
  port: "5000"
probe:
  proc_root: /fixture/proc
  max_read_bytes: 4096
logging:
  level: error
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/fixture/proc", cfg.Probe.ProcRoot)
	assert.Equal(t, int64(4096), cfg.Probe.MaxReadBytes)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
}

func TestLoadTOMLFile(t *testing.T) {
	path := writeConfig(t, "agent.toml", `
[server]
host = "127.0.0.1"

[rate_limit]
enabled = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "4201", cfg.Server.Port)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadFileFromEnvironment(t *testing.T) {
	path := writeConfig(t, "agent.yml", "server:\n  port: \"6000\"\n")
	t.Setenv(FileEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "6000", cfg.Server.Port)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "agent.yaml", "server:\n  port: \"5000\"\n")
	t.Setenv("HOSTAGENT_PORT", "7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "agent.json", "{}"))
	assert.ErrorContains(t, err, "unsupported config file type")

	_, err = Load(writeConfig(t, "bad.toml", "[server\nport ="))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port not numeric", func(c *Config) { c.Server.Port = "http" }},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }},
		{"negative grace", func(c *Config) { c.Server.ShutdownGrace = -1 }},
		{"relative base dir", func(c *Config) { c.Probe.BaseDir = "data" }},
		{"negative read limit", func(c *Config) { c.Probe.MaxReadBytes = -1 }},
		{"zero rps", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 0
	assert.NoError(t, cfg.Validate())
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--port", "8080", "--base-dir", "/srv", "--no-rate-limit", "--config", "agent.toml"}))

	cfg := Default()
	cfg.Server.Host = "10.0.0.1"
	cfg.Logging.Level = "warn"
	flags.Apply(cfg)

	assert.Equal(t, "agent.toml", flags.ConfigFile)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/srv", cfg.Probe.BaseDir)
	assert.False(t, cfg.RateLimit.Enabled)

	// Unset flags leave earlier layers alone
	assert.Equal(t, "10.0.0.1", cfg.Server.Host)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
