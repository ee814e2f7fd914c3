// Package client is a typed Go client for the agent HTTP API.
//
// Requests go through resty on top of a retryablehttp transport. Only
// transport errors and 429/502/503/504 answers are retried, and a circuit
// breaker stops calling an agent that keeps failing. Failures answered by
// the agent come back as *errs.Error values carrying the agent's kind, so
// errors.Is(err, errs.ErrNotFound) works across the wire.
//
//	c, err := client.New(client.DefaultConfig())
//	report, err := c.MemoryReport(ctx)
package client
