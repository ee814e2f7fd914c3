/*
Package monitoring provides Prometheus metrics for the host agent.

# Overview

Metrics live on a private registry owned by Metrics, so several collectors
can coexist in one process (tests build one per case).

# Metrics

- HTTP requests: count, latency, request and response size per route
- Host operations: count and latency per operation and status
- File actions: outcomes per action (changed, noop, error)
- Process listings: per-PID records skipped, by error kind
- Line streams: open WebSocket streams and lines sent
- Uptime, plus the Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "memory")
	// ... perform operation ...
	timer.Stop(monitoring.StatusOK)
*/
package monitoring
