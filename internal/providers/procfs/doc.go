// Package procfs reads live system state from the kernel's proc file system.
//
// This package is organized into independent parsers, one per source:
//   - meminfo: memory counters from /proc/meminfo (lenient, key-value)
//   - loadavg: load averages from /proc/loadavg (strict, positional)
//   - process: per-process records from /proc/<pid>/{cmdline,status}
//   - usage: derived metrics computed from parsed snapshots
//
// Every read is a fresh snapshot. Nothing is cached and no state is shared
// between calls, so an FS value is safe for concurrent use.
//
// Example Usage:
//
//	fs := procfs.New("/proc")
//	mem, err := fs.Memory()
//	pct, err := procfs.UsedPercent(mem)
package procfs
