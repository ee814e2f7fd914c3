package procfs

import "github.com/GriffinCanCode/hostagent/internal/shared/errs"

// UsedPercent returns the share of memory not free, in buffers or in page
// cache. A snapshot with a zero total has no defined percentage.
func UsedPercent(m MemorySnapshot) (float64, error) {
	if m.TotalKB == 0 {
		return 0, errs.Newf(errs.KindZeroDivision, "used percent", "", "MemTotal is zero")
	}

	total := float64(m.TotalKB)
	reclaimable := float64(m.FreeKB) + float64(m.BuffersKB) + float64(m.CachedKB)
	return (total - reclaimable) / total * 100, nil
}
