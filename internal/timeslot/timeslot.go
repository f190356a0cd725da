// Package timeslot defines the discrete 30-minute grid the engine schedules
// on. Everything here is pure arithmetic over time.Time; callers decide what
// to do with unaligned input (write paths reject, read paths truncate).
package timeslot

import "time"

const (
	// SlotDuration is the grid cell size.
	SlotDuration = 30 * time.Minute

	// SlotsPerDay is the number of grid cells in a civil day.
	SlotsPerDay = 48
)

// Aligned reports whether t sits exactly on a slot boundary
// (minute 0 or 30, no seconds or sub-second component).
func Aligned(t time.Time) bool {
	m := t.Minute()
	return (m == 0 || m == 30) && t.Second() == 0 && t.Nanosecond() == 0
}

// Truncate floors t to the slot boundary at or before it, preserving the
// location.
func Truncate(t time.Time) time.Time {
	excess := time.Duration(t.Minute()%30)*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	return t.Add(-excess)
}

// Index maps t to a zero-based slot index relative to epoch. Both timestamps
// are instants, so the index is location-independent. Times before the epoch
// yield negative indexes.
func Index(t, epoch time.Time) int {
	d := t.Sub(epoch)
	if d < 0 {
		// floor division for negative offsets
		return int((d - SlotDuration + time.Nanosecond) / SlotDuration)
	}
	return int(d / SlotDuration)
}

// DayStart returns midnight of t's civil day in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
