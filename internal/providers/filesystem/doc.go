// Package filesystem probes and mutates the local file system on behalf of
// the agent.
//
// This package is organized into specialized modules:
//   - metadata: raw ownership and timestamps from the native stat primitive
//   - actions: idempotent create, mkdir, delete, copy and move
//   - contents: whole-file and line-streamed reads
//   - directory: recursive directory usage
//
// All modules share an Ops value that anchors relative paths at an explicit
// base directory. Nothing here depends on the process working directory.
//
// Example Usage:
//
//	ops, err := filesystem.NewOps("/srv/agent")
//	engine := &filesystem.Engine{Ops: ops}
//	outcome, err := engine.CopyFile("a.txt", "b.txt")
package filesystem
