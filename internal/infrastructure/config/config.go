package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// FileEnv names the environment variable holding the config file path.
const FileEnv = "HOSTAGENT_CONFIG_FILE"

// Config holds all agent configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Probe     ProbeConfig     `yaml:"probe" toml:"probe"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host        string   `envconfig:"HOSTAGENT_HOST" yaml:"host" toml:"host"`
	Port        string   `envconfig:"HOSTAGENT_PORT" yaml:"port" toml:"port"`
	CORSOrigins []string `envconfig:"HOSTAGENT_CORS_ORIGINS" yaml:"cors_origins" toml:"cors_origins"`
	// ShutdownGrace is in seconds
	ShutdownGrace int `envconfig:"HOSTAGENT_SHUTDOWN_GRACE" yaml:"shutdown_grace" toml:"shutdown_grace"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// ShutdownTimeout returns the grace period as a duration.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownGrace) * time.Second
}

// ProbeConfig holds the locations the probes and file actions work against.
type ProbeConfig struct {
	ProcRoot string `envconfig:"HOSTAGENT_PROC_ROOT" yaml:"proc_root" toml:"proc_root"`
	// BaseDir anchors relative paths; empty means the working directory at
	// startup
	BaseDir      string `envconfig:"HOSTAGENT_BASE_DIR" yaml:"base_dir" toml:"base_dir"`
	MaxReadBytes int64  `envconfig:"HOSTAGENT_MAX_READ_BYTES" yaml:"max_read_bytes" toml:"max_read_bytes"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"HOSTAGENT_LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"HOSTAGENT_LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"HOSTAGENT_RATE_LIMIT_RPS" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"HOSTAGENT_RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"HOSTAGENT_RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          "4201",
			CORSOrigins:   []string{"*"},
			ShutdownGrace: 10,
		},
		Probe: ProbeConfig{
			ProcRoot:     "/proc",
			MaxReadBytes: 8 << 20,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Load builds the configuration from defaults, the config file at path (or
// the one named by HOSTAGENT_CONFIG_FILE when path is empty) and the
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration or returns the defaults.
func LoadOrDefault() *Config {
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile overlays the YAML or TOML file at path onto c. Keys absent
// from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Server.Port)
	}
	if c.Server.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown grace must not be negative")
	}
	if c.Probe.BaseDir != "" && !filepath.IsAbs(c.Probe.BaseDir) {
		return fmt.Errorf("base directory %q is not absolute", c.Probe.BaseDir)
	}
	if c.Probe.MaxReadBytes < 0 {
		return fmt.Errorf("max read bytes must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive rps and burst")
	}
	return nil
}
