// Package main is the entry point of the host agent.
//
// The agent reads kernel state (memory counters, load averages, the
// process table) and file metadata, and performs idempotent file actions,
// all exposed over a JSON HTTP API.
//
// Configuration:
//   - Defaults, overlaid by a YAML or TOML file (--config or HOSTAGENT_CONFIG_FILE)
//   - Environment variables (HOSTAGENT_*)
//   - CLI flags (override everything)
//
// Usage:
//
//	# Serve on the default port 4201, resolving relative paths against /srv
//	./server --base-dir /srv
//
//	# Read a container's view of the host
//	./server --proc-root /host/proc --port 9100
//
//	# Development mode (colored logs)
//	./server --dev --log-level debug
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown
package main
