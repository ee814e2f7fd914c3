package procfs

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// LoadAverage reads /proc/loadavg.
//
// The file looks like "0.00 0.01 0.05 1/164 3582": three averages, the
// runnable/total scheduling entities and the last PID. Only the three
// averages are parsed and all three must be present.
func (f *FS) LoadAverage() (LoadAverage, error) {
	path := f.path("loadavg")
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadAverage{}, errs.FromIO("read", path, err)
	}

	load, err := ParseLoadAvg(string(data))
	if err != nil {
		return LoadAverage{}, fmt.Errorf("%s: %w", path, err)
	}
	return load, nil
}

// ParseLoadAvg parses the three leading load-average fields of line.
// A missing or malformed field fails the whole parse.
func ParseLoadAvg(line string) (LoadAverage, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return LoadAverage{}, errs.Newf(errs.KindInvalidFormat, "parse loadavg", "",
			"expected 3 fields, got %d", len(fields))
	}

	var values [3]float64
	for i := range values {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return LoadAverage{}, errs.New(errs.KindInvalidFormat, "parse loadavg", "", err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return LoadAverage{}, errs.Newf(errs.KindInvalidFormat, "parse loadavg", "",
				"field %d out of range: %q", i+1, fields[i])
		}
		values[i] = v
	}

	return LoadAverage{
		OneMinute:     values[0],
		FiveMinute:    values[1],
		FifteenMinute: values[2],
	}, nil
}
