package billing

import "time"

// Clock derives elapsed and remaining seconds of a session from its
// timestamps. It holds no tick state, so any observer can rebuild it.
type Clock struct {
	Start time.Time
	// PausedAt is set while the session is paused; the clock freezes there.
	PausedAt *time.Time
	// PausedSeconds is the total of completed pauses.
	PausedSeconds int64
	// PackageSeconds is zero for open-ended sessions.
	PackageSeconds int64
}

// PackageSeconds is floor((end - start) / 1s), never negative.
func PackageSeconds(start, end time.Time) int64 {
	return wholeSeconds(end.Sub(start))
}

func wholeSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Elapsed returns billable seconds at now, excluding paused intervals.
func (c Clock) Elapsed(now time.Time) int64 {
	ref := now
	if c.PausedAt != nil {
		ref = *c.PausedAt
	}
	elapsed := wholeSeconds(ref.Sub(c.Start)) - c.PausedSeconds
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining is max(0, package - elapsed) for packages and 0 otherwise.
func (c Clock) Remaining(now time.Time) int64 {
	if c.PackageSeconds <= 0 {
		return 0
	}
	remaining := c.PackageSeconds - c.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c Clock) IsPackage() bool {
	return c.PackageSeconds > 0
}
