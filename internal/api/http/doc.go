// Package http is the HTTP dispatch layer of the host agent.
//
// Handlers decode a request, call the host façade and write the JSON
// envelope:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": "stat /x: no such file or directory", "kind": "not_found"}
//
// Error kinds map to statuses: not_found 404, permission_denied 403,
// invalid_argument 400, invalid_format and zero_division 422, anything
// else 500. Failures are logged here with the request ID; the layers below
// never log.
//
// Route groups:
//   - /file: metadata probes, whole and streamed reads, directory size, actions
//   - /memory: memory counters and used percentage
//   - /cpu: load averages
//   - /proc: process listing
package http
