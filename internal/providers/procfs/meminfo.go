package procfs

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// Memory reads /proc/meminfo.
//
// The read succeeds whenever the source is readable. Keys other than
// MemTotal, MemFree, Buffers and Cached are ignored, and a counter whose
// value does not parse is reported as zero.
func (f *FS) Memory() (MemorySnapshot, error) {
	path := f.path("meminfo")
	file, err := os.Open(path)
	if err != nil {
		return MemorySnapshot{}, errs.FromIO("open", path, err)
	}
	defer file.Close()

	snapshot, err := ParseMemInfo(file)
	if err != nil {
		return MemorySnapshot{}, errs.FromIO("read", path, err)
	}
	return snapshot, nil
}

// ParseMemInfo parses the meminfo format: one "Key: value unit" per line.
// Only read errors are returned.
func ParseMemInfo(r io.Reader) (MemorySnapshot, error) {
	var snapshot MemorySnapshot

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var target *uint64
		switch fields[0] {
		case "MemTotal:":
			target = &snapshot.TotalKB
		case "MemFree:":
			target = &snapshot.FreeKB
		case "Buffers:":
			target = &snapshot.BuffersKB
		case "Cached:":
			target = &snapshot.CachedKB
		default:
			continue
		}

		*target = 0
		if len(fields) > 1 {
			if v, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
				*target = v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return MemorySnapshot{}, err
	}

	return snapshot, nil
}
