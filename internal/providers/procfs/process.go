package procfs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// readFile allows tests to stub per-process reads.
var readFile = os.ReadFile

// Processes enumerates the numeric entries of the proc root and reads each
// process's command line and status block.
//
// Per-record failures never abort the listing. A process that exited
// between enumeration and the detail read is dropped silently; any other
// per-PID failure drops the record and is reported in Skipped. Only a
// failure to list the proc root itself is returned as an error.
func (f *FS) Processes(ctx context.Context) (ProcessListing, error) {
	pids, err := f.PIDs()
	if err != nil {
		return ProcessListing{}, err
	}

	listing := ProcessListing{Processes: make([]ProcessRecord, 0, len(pids))}
	for _, pid := range pids {
		if err := ctx.Err(); err != nil {
			return ProcessListing{}, err
		}

		record, err := f.Process(pid)
		if err != nil {
			if vanished(err) {
				continue
			}
			listing.Skipped = append(listing.Skipped, SkippedProcess{
				PID:    pid,
				Kind:   errs.KindOf(err),
				Reason: err.Error(),
			})
			continue
		}
		listing.Processes = append(listing.Processes, record)
	}

	return listing, nil
}

// PIDs lists the numeric directory names under the proc root.
func (f *FS) PIDs() ([]uint32, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, errs.FromIO("list", f.root, err)
	}

	pids := make([]uint32, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.ParseUint(entry.Name(), 10, 32)
		if err != nil {
			continue
		}
		pids = append(pids, uint32(pid))
	}
	return pids, nil
}

// Process reads the record of a single PID.
func (f *FS) Process(pid uint32) (ProcessRecord, error) {
	statusPath := f.pidPath(pid, "status")
	status, err := readFile(statusPath)
	if err != nil {
		return ProcessRecord{}, errs.FromIO("read", statusPath, err)
	}

	cmdlinePath := f.pidPath(pid, "cmdline")
	cmdline, err := readFile(cmdlinePath)
	if err != nil {
		return ProcessRecord{}, errs.FromIO("read", cmdlinePath, err)
	}

	return ProcessRecord{
		PID:         pid,
		Name:        statusName(string(status)),
		CommandLine: FormatCmdline(cmdline),
		Status:      string(status),
	}, nil
}

// FormatCmdline turns a NUL-separated argument vector into a single
// space-separated string. Kernel threads have an empty vector.
func FormatCmdline(raw []byte) string {
	return strings.TrimSpace(strings.ReplaceAll(string(raw), "\x00", " "))
}

// statusName extracts the value of the "Name:" line of a status block
func statusName(status string) string {
	for _, line := range strings.Split(status, "\n") {
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// vanished reports whether err means the process no longer exists
func vanished(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ESRCH)
}
