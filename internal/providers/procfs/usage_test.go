package procfs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

func TestUsedPercent(t *testing.T) {
	tests := []struct {
		name     string
		snapshot MemorySnapshot
		expected float64
	}{
		{"half used", MemorySnapshot{TotalKB: 1000, FreeKB: 250, BuffersKB: 100, CachedKB: 150}, 50},
		{"nothing used", MemorySnapshot{TotalKB: 1000, FreeKB: 1000}, 0},
		{"fully used", MemorySnapshot{TotalKB: 1000}, 100},
		{"only cache", MemorySnapshot{TotalKB: 400, CachedKB: 100}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UsedPercent(tt.snapshot)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestUsedPercentBounds(t *testing.T) {
	for total := uint64(1); total <= 64; total++ {
		for reclaimable := uint64(0); reclaimable <= total; reclaimable++ {
			snapshot := MemorySnapshot{
				TotalKB:   total,
				FreeKB:    reclaimable / 3,
				BuffersKB: reclaimable / 3,
				CachedKB:  reclaimable - 2*(reclaimable/3),
			}
			got, err := UsedPercent(snapshot)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		}
	}
}

func TestUsedPercentZeroTotal(t *testing.T) {
	got, err := UsedPercent(MemorySnapshot{FreeKB: 10})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrZeroDivision)
	assert.False(t, math.IsNaN(got))
	assert.False(t, math.IsInf(got, 0))
}
