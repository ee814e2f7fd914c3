// Package resilience guards calls to a remote agent with a circuit breaker.
//
// A breaker is closed while calls succeed, opens once Trip reports too
// many failures, and after Cooldown lets Probes calls through half-open.
// Errors for which IsFailure returns false (for example a well-formed
// not_found answer from the agent) count as successes.
//
//	breaker := resilience.New("agent", resilience.Settings{Cooldown: 10 * time.Second})
//	report, err := resilience.Call(breaker, func() (host.MemoryReport, error) {
//	    return fetch(ctx)
//	})
//
//	Closed --[trip]-> Open --[cooldown]-> Half-Open --[probes ok]-> Closed
//	                                          |
//	                                      [failure] -> Open
package resilience
