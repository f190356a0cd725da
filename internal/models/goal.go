package models

import "time"

// Goal is a time-bounded target within a single pillar. The pillar is fixed
// at creation. Exactly one target form is set: a minutes target
// (TargetMinutes > 0) or a binary completion flag (TargetDone).
//
// The period is half-open [PeriodStart, PeriodEnd); progress accumulation is
// clamped to it.
type Goal struct {
	ID            string    `json:"id"`
	Pillar        Pillar    `json:"pillar"`
	Title         string    `json:"title"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	TargetMinutes int       `json:"target_minutes,omitempty"`
	TargetDone    bool      `json:"target_done,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ContainsInstant reports whether t falls inside the goal's target period.
func (g Goal) ContainsInstant(t time.Time) bool {
	return !t.Before(g.PeriodStart) && t.Before(g.PeriodEnd)
}
