package models

import "time"

// TimeEntry is the atomic scheduling unit: a half-open interval [Start, End)
// logged against one task. Both endpoints sit on the 30-minute grid and no
// two entries in one schedule overlap; adjacency is allowed.
type TimeEntry struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (e TimeEntry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Overlaps reports whether the half-open intervals of e and other intersect.
func (e TimeEntry) Overlaps(other TimeEntry) bool {
	return e.Start.Before(other.End) && other.Start.Before(e.End)
}

// OverlapsRange reports whether e intersects the half-open range [start, end).
func (e TimeEntry) OverlapsRange(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}
