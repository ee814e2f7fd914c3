// Package config provides 12-factor configuration for the host agent.
//
// Values are layered, later layers winning:
//
//	Default() < config file < environment < command-line flags
//
// The config file is named by --config or HOSTAGENT_CONFIG_FILE and is
// decoded as YAML (.yaml, .yml) or TOML (.toml).
//
// Configuration Sections:
//   - Server: listen address, CORS origins, shutdown grace
//   - Probe: proc root, base directory for relative paths, read limit
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//
// Environment Variables:
//   - HOSTAGENT_HOST, HOSTAGENT_PORT, HOSTAGENT_CORS_ORIGINS, HOSTAGENT_SHUTDOWN_GRACE
//   - HOSTAGENT_PROC_ROOT, HOSTAGENT_BASE_DIR, HOSTAGENT_MAX_READ_BYTES
//   - HOSTAGENT_LOG_LEVEL, HOSTAGENT_LOG_DEV
//   - HOSTAGENT_RATE_LIMIT_RPS, HOSTAGENT_RATE_LIMIT_BURST, HOSTAGENT_RATE_LIMIT_ENABLED
//
// Example Usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("listening on %s\n", cfg.Server.Addr())
package config
