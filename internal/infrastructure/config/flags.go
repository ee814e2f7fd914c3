package config

import (
	"github.com/spf13/pflag"
)

// Flags binds the command-line overrides. Only flags set explicitly on the
// command line are applied.
type Flags struct {
	fs *pflag.FlagSet

	ConfigFile   string
	host         string
	port         string
	procRoot     string
	baseDir      string
	maxReadBytes int64
	logLevel     string
	dev          bool
	noRateLimit  bool
}

// BindFlags registers the agent flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}

	fs.StringVar(&f.ConfigFile, "config", "", "config file (.yaml, .yml or .toml), overrides "+FileEnv)
	fs.StringVar(&f.host, "host", d.Server.Host, "listen host")
	fs.StringVarP(&f.port, "port", "p", d.Server.Port, "listen port")
	fs.StringVar(&f.procRoot, "proc-root", d.Probe.ProcRoot, "root of the proc file system")
	fs.StringVar(&f.baseDir, "base-dir", "", "directory relative paths resolve against (default: working directory)")
	fs.Int64Var(&f.maxReadBytes, "max-read-bytes", d.Probe.MaxReadBytes, "largest file served whole by /file/contents")
	fs.StringVar(&f.logLevel, "log-level", d.Logging.Level, "log level (debug, info, warn, error)")
	fs.BoolVar(&f.dev, "dev", false, "development logging")
	fs.BoolVar(&f.noRateLimit, "no-rate-limit", false, "disable per-IP rate limiting")
	return f
}

// Apply copies the explicitly set flags onto cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.fs.Changed("host") {
		cfg.Server.Host = f.host
	}
	if f.fs.Changed("port") {
		cfg.Server.Port = f.port
	}
	if f.fs.Changed("proc-root") {
		cfg.Probe.ProcRoot = f.procRoot
	}
	if f.fs.Changed("base-dir") {
		cfg.Probe.BaseDir = f.baseDir
	}
	if f.fs.Changed("max-read-bytes") {
		cfg.Probe.MaxReadBytes = f.maxReadBytes
	}
	if f.fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if f.fs.Changed("dev") {
		cfg.Logging.Development = f.dev
	}
	if f.fs.Changed("no-rate-limit") {
		cfg.RateLimit.Enabled = !f.noRateLimit
	}
}
