package models

import "time"

type TaskStatus string

const (
	TaskPlanned    TaskStatus = "planned"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPlanned, TaskInProgress, TaskDone, TaskCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskDone || s == TaskCancelled
}

// CanTransition reports whether a task may move from s to next. Progress is
// monotonic (planned -> in_progress -> done); cancelled is reachable from
// any non-terminal status.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if !next.Valid() || s.IsTerminal() {
		return false
	}
	switch s {
	case TaskPlanned:
		return next == TaskInProgress || next == TaskDone || next == TaskCancelled
	case TaskInProgress:
		return next == TaskDone || next == TaskCancelled
	default:
		return false
	}
}

// Task is a unit of work under exactly one pillar and at most one goal.
// When linked to a goal the pillar always equals the goal's pillar.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Pillar          Pillar     `json:"pillar"`
	GoalID          string     `json:"goal_id,omitempty"`
	EstimateMinutes int        `json:"estimate_minutes,omitempty"`
	DueBy           *time.Time `json:"due_by,omitempty"`
	Status          TaskStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}
