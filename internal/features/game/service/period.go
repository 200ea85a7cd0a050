package service

import "time"

// unixEpoch anchors period windows so that every process computes identical
// window boundaries regardless of start time.
var unixEpoch = time.Unix(0, 0).UTC()

// PeriodStart returns the start of the fixed-width window of length d that
// contains now. Windows are aligned to the Unix epoch: two instants inside
// the same window always yield the same start, and instants exactly d apart
// never do.
func PeriodStart(d time.Duration, now time.Time) time.Time {
	elapsed := now.Sub(unixEpoch)
	return unixEpoch.Add(elapsed / d * d)
}

// PeriodKey is the canonical string form of a window start, used as the
// stored period identifier.
func PeriodKey(d time.Duration, now time.Time) string {
	return PeriodStart(d, now).Format(time.RFC3339)
}
