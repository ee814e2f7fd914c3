// Package ws streams file contents line by line over a WebSocket.
//
// The client connects to /file/contents/ws?path=<path>. A missing path is
// rejected with a 400 JSON envelope before the upgrade. After the upgrade
// the server sends, in order:
//
//   - start: stream_id and path
//   - line: one message per line, with its 1-based seq
//   - error: when the read fails (kind carries the error kind)
//   - end: the number of lines sent
//
// then closes the connection normally. Closing the socket from the client
// side cancels the read.
//
// Example Usage:
//
//	handler := ws.NewHandler(svc, logger, metrics)
//	router.GET("/file/contents/ws", handler.HandleStream)
package ws
