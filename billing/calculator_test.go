package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpenBill(t *testing.T) {
	tests := []struct {
		name    string
		elapsed int64
		rate    int64
		want    int64
	}{
		{"zero elapsed", 0, 50000, 0},
		{"45 minutes", 2700, 50000, 37500},
		{"one second rounds up", 1, 50000, 14},
		{"exact hour", 3600, 50000, 50000},
		{"zero rate", 5000, 0, 0},
		{"odd rate", 61, 35000, 594},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OpenBill(tt.elapsed, tt.rate))
		})
	}
}

func TestOpenBillMonotonic(t *testing.T) {
	prev := int64(0)
	for e := int64(0); e <= 4*3600; e += 7 {
		got := OpenBill(e, 45000)
		assert.GreaterOrEqual(t, got, prev, "elapsed %d", e)
		prev = got
	}
}

func TestPackageBillConstant(t *testing.T) {
	start := time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	c := Clock{Start: start, PackageSeconds: PackageSeconds(start, end)}

	for _, after := range []time.Duration{10 * time.Minute, 2 * time.Hour, 3 * time.Hour} {
		got := SessionBill(c, 50000, 0, start.Add(after))
		assert.Equal(t, int64(100000), got, "after %s", after)
	}
}

func TestSessionBillCarried(t *testing.T) {
	start := time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)
	c := Clock{Start: start}
	assert.Equal(t, int64(20000+37500), SessionBill(c, 50000, 20000, start.Add(45*time.Minute)))
}
