// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// Only the dispatch layer and the server log. The probes and the file
// action engine return classified errors and never log.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("agent starting", zap.String("addr", ":4201"))
//	logger.Error("probe failed", zap.String("path", path), zap.Error(err))
package logging
