/*
Package tracing tags every HTTP request with a request ID and writes one
structured access log line per request.

# Request IDs

An incoming X-Request-ID header is honored when it is short and printable;
otherwise a ULID-based ID ("req_01J...") is generated. The ID is echoed in
the response header and stored in the request context, where handlers read
it with RequestID to correlate their own log lines.

# Usage

	router.Use(tracing.Middleware(logger))

	func handler(c *gin.Context) {
	    logger.Warn("probe failed", zap.String("request_id", tracing.RequestID(c.Request.Context())))
	}
*/
package tracing
