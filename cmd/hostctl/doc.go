// Package main is hostctl, a command line client for a running host agent.
//
// Results print as indented JSON; cat and lines print file text as is.
//
// Usage:
//
//	hostctl [--agent URL] [--timeout 30s] [--retries 3] [-v] <command> [args]
//
//	hostctl mem                    # memory counters and used percent
//	hostctl ps 'nginx*'            # processes whose name matches a glob
//	hostctl stat /etc/hosts        # owner, group and timestamps
//	hostctl lines /var/log/syslog  # stream a large file line by line
//	hostctl copy a.txt b.txt       # idempotent file actions
//
// The agent URL defaults to HOSTAGENT_URL, then http://127.0.0.1:4201.
// Usage errors exit with status 2, failed requests with status 1.
package main
