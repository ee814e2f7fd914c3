// Package host is the query façade over the host probes and the file
// action engine.
//
// A Service is built once from the configured proc root and base
// directory and is safe for concurrent use: it holds no mutable state and
// every call reads live kernel or file system state. Each call records an
// operation observation on the metrics collector when one is configured.
// Errors are returned classified (see package errs) and are never logged
// here.
//
// Example Usage:
//
//	svc, err := host.NewService(host.Options{ProcRoot: "/proc", BaseDir: "/srv"})
//	report, err := svc.MemoryReport()
//	listing, err := svc.Processes(ctx, "nginx*")
//	outcome, err := svc.Perform(filesystem.ActionCopy, filesystem.ActionRequest{Source: "a", Destination: "b"})
package host
