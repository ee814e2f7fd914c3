// Package server assembles the agent: host service, gin router,
// middleware stack (recovery, request IDs and access log, metrics, CORS,
// rate limit), routes and the underlying net/http server with graceful
// shutdown.
package server
