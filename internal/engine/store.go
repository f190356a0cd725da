// Package engine is the time allocation and scheduling core: entity
// ownership with invariants (Store), conflict-checked placement (Scheduler),
// read-only rollups (Aggregator), and the single external surface (Facade).
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pillarlog/internal/models"
	"pillarlog/internal/storage"
)

// Store owns the four entity types and is their sole mutator. Every
// mutation runs read-validate-write under one exclusive section, so
// concurrent writers are linearized; reads take the shared side and observe
// committed writes in full. The lock is per-Store, i.e. per owner schedule.
type Store struct {
	mu       sync.RWMutex
	provider storage.Provider
	now      func() time.Time
}

func NewStore(p storage.Provider) *Store {
	return &Store{provider: p, now: time.Now}
}

// GoalSpec describes a goal to create. Exactly one target form must be set:
// TargetMinutes > 0 or TargetDone.
type GoalSpec struct {
	Pillar        models.Pillar `json:"pillar"`
	Title         string        `json:"title"`
	PeriodStart   time.Time     `json:"period_start"`
	PeriodEnd     time.Time     `json:"period_end"`
	TargetMinutes int           `json:"target_minutes,omitempty"`
	TargetDone    bool          `json:"target_done,omitempty"`
}

func (s *Store) CreateGoal(ctx context.Context, spec GoalSpec) (models.Goal, error) {
	if !spec.Pillar.Valid() {
		return models.Goal{}, failf(ErrValidation, "invalid pillar %d", int(spec.Pillar))
	}
	if spec.Title == "" {
		return models.Goal{}, failf(ErrValidation, "goal title is required")
	}
	if spec.PeriodStart.After(spec.PeriodEnd) {
		return models.Goal{}, failf(ErrValidation, "goal period start %s is after end %s",
			spec.PeriodStart.Format(time.RFC3339), spec.PeriodEnd.Format(time.RFC3339))
	}
	if spec.TargetMinutes < 0 {
		return models.Goal{}, failf(ErrValidation, "negative target minutes %d", spec.TargetMinutes)
	}
	if (spec.TargetMinutes > 0) == spec.TargetDone {
		return models.Goal{}, failf(ErrValidation, "goal needs exactly one target: minutes or completion flag")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := models.Goal{
		ID:            uuid.New().String(),
		Pillar:        spec.Pillar,
		Title:         spec.Title,
		PeriodStart:   spec.PeriodStart,
		PeriodEnd:     spec.PeriodEnd,
		TargetMinutes: spec.TargetMinutes,
		TargetDone:    spec.TargetDone,
		CreatedAt:     s.now(),
	}
	if err := s.provider.PutGoal(ctx, g); err != nil {
		return models.Goal{}, wrapStorage(err, ErrUnknownGoal)
	}
	return g, nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, err := s.provider.GetGoal(ctx, id)
	if err != nil {
		return models.Goal{}, wrapStorage(err, ErrUnknownGoal)
	}
	return g, nil
}

// ListGoals returns goals, optionally restricted to one pillar.
func (s *Store) ListGoals(ctx context.Context, pillar *models.Pillar) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals, err := s.provider.ListGoals(ctx)
	if err != nil {
		return nil, wrapStorage(err, ErrUnknownGoal)
	}
	if pillar == nil {
		return goals, nil
	}
	filtered := goals[:0:0]
	for _, g := range goals {
		if g.Pillar == *pillar {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

// GoalUpdate is a partial goal edit. Nil fields are left unchanged. The
// pillar is fixed at creation and cannot be edited; retargeting is allowed
// but must land on exactly one target form.
type GoalUpdate struct {
	Title         *string    `json:"title,omitempty"`
	PeriodStart   *time.Time `json:"period_start,omitempty"`
	PeriodEnd     *time.Time `json:"period_end,omitempty"`
	TargetMinutes *int       `json:"target_minutes,omitempty"`
	TargetDone    *bool      `json:"target_done,omitempty"`
}

func (s *Store) UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.provider.GetGoal(ctx, id)
	if err != nil {
		return models.Goal{}, wrapStorage(err, ErrUnknownGoal)
	}

	if upd.Title != nil {
		if *upd.Title == "" {
			return models.Goal{}, failf(ErrValidation, "goal title is required")
		}
		g.Title = *upd.Title
	}
	if upd.PeriodStart != nil {
		g.PeriodStart = *upd.PeriodStart
	}
	if upd.PeriodEnd != nil {
		g.PeriodEnd = *upd.PeriodEnd
	}
	if g.PeriodStart.After(g.PeriodEnd) {
		return models.Goal{}, failf(ErrValidation, "goal period start %s is after end %s",
			g.PeriodStart.Format(time.RFC3339), g.PeriodEnd.Format(time.RFC3339))
	}
	if upd.TargetMinutes != nil {
		if *upd.TargetMinutes < 0 {
			return models.Goal{}, failf(ErrValidation, "negative target minutes %d", *upd.TargetMinutes)
		}
		g.TargetMinutes = *upd.TargetMinutes
	}
	if upd.TargetDone != nil {
		g.TargetDone = *upd.TargetDone
	}
	if (g.TargetMinutes > 0) == g.TargetDone {
		return models.Goal{}, failf(ErrValidation, "goal needs exactly one target: minutes or completion flag")
	}

	if err := s.provider.PutGoal(ctx, g); err != nil {
		return models.Goal{}, wrapStorage(err, ErrUnknownGoal)
	}
	return g, nil
}

// DeleteGoal removes the goal and detaches its tasks: they keep their pillar
// and entries, only the goal link is cleared.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.provider.GetGoal(ctx, id); err != nil {
		return wrapStorage(err, ErrUnknownGoal)
	}
	tasks, err := s.provider.ListTasksByGoal(ctx, id)
	if err != nil {
		return wrapStorage(err, ErrUnknownGoal)
	}
	for _, t := range tasks {
		t.GoalID = ""
		if err := s.provider.PutTask(ctx, t); err != nil {
			return wrapStorage(err, ErrUnknownTask)
		}
	}
	return wrapStorage(s.provider.DeleteGoal(ctx, id), ErrUnknownGoal)
}

// TaskSpec describes a task to create. When GoalID is set the task inherits
// the goal's pillar; Pillar may then be omitted (nil) or must match. Without
// a goal, Pillar is required.
type TaskSpec struct {
	Title           string         `json:"title"`
	Pillar          *models.Pillar `json:"pillar,omitempty"`
	GoalID          string         `json:"goal_id,omitempty"`
	EstimateMinutes int            `json:"estimate_minutes,omitempty"`
	DueBy           *time.Time     `json:"due_by,omitempty"`
}

func (s *Store) CreateTask(ctx context.Context, spec TaskSpec) (models.Task, error) {
	if spec.Title == "" {
		return models.Task{}, failf(ErrValidation, "task title is required")
	}
	if spec.EstimateMinutes < 0 {
		return models.Task{}, failf(ErrValidation, "negative estimate %d", spec.EstimateMinutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var pillar models.Pillar
	switch {
	case spec.GoalID != "":
		g, err := s.provider.GetGoal(ctx, spec.GoalID)
		if err != nil {
			return models.Task{}, wrapStorage(err, ErrUnknownGoal)
		}
		if spec.Pillar != nil && *spec.Pillar != g.Pillar {
			return models.Task{}, failf(ErrValidation, "task pillar %s does not match goal pillar %s",
				*spec.Pillar, g.Pillar)
		}
		pillar = g.Pillar
	case spec.Pillar != nil:
		if !spec.Pillar.Valid() {
			return models.Task{}, failf(ErrValidation, "invalid pillar %d", int(*spec.Pillar))
		}
		pillar = *spec.Pillar
	default:
		return models.Task{}, failf(ErrValidation, "task needs a pillar or a goal to inherit one from")
	}

	t := models.Task{
		ID:              uuid.New().String(),
		Title:           spec.Title,
		Pillar:          pillar,
		GoalID:          spec.GoalID,
		EstimateMinutes: spec.EstimateMinutes,
		DueBy:           spec.DueBy,
		Status:          models.TaskPlanned,
		CreatedAt:       s.now(),
	}
	if err := s.provider.PutTask(ctx, t); err != nil {
		return models.Task{}, wrapStorage(err, ErrUnknownTask)
	}
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.provider.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, wrapStorage(err, ErrUnknownTask)
	}
	return t, nil
}

// TaskFilter restricts ListTasks. Zero value means no restriction.
type TaskFilter struct {
	Pillar *models.Pillar
	GoalID string
}

func (s *Store) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []models.Task
	var err error
	switch {
	case filter.GoalID != "":
		tasks, err = s.provider.ListTasksByGoal(ctx, filter.GoalID)
	case filter.Pillar != nil:
		tasks, err = s.provider.ListTasksByPillar(ctx, *filter.Pillar)
	default:
		tasks, err = s.provider.ListTasks(ctx)
	}
	if err != nil {
		return nil, wrapStorage(err, ErrUnknownTask)
	}
	if filter.GoalID != "" && filter.Pillar != nil {
		filtered := tasks[:0:0]
		for _, t := range tasks {
			if t.Pillar == *filter.Pillar {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	return tasks, nil
}

// TaskUpdate is a partial task edit. Nil fields are left unchanged. Pillar
// and goal link are fixed at creation; status changes go through
// TransitionTask.
type TaskUpdate struct {
	Title           *string    `json:"title,omitempty"`
	EstimateMinutes *int       `json:"estimate_minutes,omitempty"`
	DueBy           *time.Time `json:"due_by,omitempty"`
}

func (s *Store) UpdateTask(ctx context.Context, id string, upd TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.provider.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, wrapStorage(err, ErrUnknownTask)
	}

	if upd.Title != nil {
		if *upd.Title == "" {
			return models.Task{}, failf(ErrValidation, "task title is required")
		}
		t.Title = *upd.Title
	}
	if upd.EstimateMinutes != nil {
		if *upd.EstimateMinutes < 0 {
			return models.Task{}, failf(ErrValidation, "negative estimate %d", *upd.EstimateMinutes)
		}
		t.EstimateMinutes = *upd.EstimateMinutes
	}
	if upd.DueBy != nil {
		t.DueBy = upd.DueBy
	}

	if err := s.provider.PutTask(ctx, t); err != nil {
		return models.Task{}, wrapStorage(err, ErrUnknownTask)
	}
	return t, nil
}

// TransitionTask moves a task through its status machine. Done and cancelled
// are terminal.
func (s *Store) TransitionTask(ctx context.Context, id string, next models.TaskStatus) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.provider.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, wrapStorage(err, ErrUnknownTask)
	}
	if !t.Status.CanTransition(next) {
		return models.Task{}, failf(ErrInvalidTransition, "task %s cannot move %s -> %s", id, t.Status, next)
	}
	t.Status = next
	if err := s.provider.PutTask(ctx, t); err != nil {
		return models.Task{}, wrapStorage(err, ErrUnknownTask)
	}
	return t, nil
}

// DeleteTask removes the task. Its time entries are detached, not deleted:
// they stay on the grid (and still conflict) but drop out of pillar and goal
// rollups because they no longer resolve to a pillar.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wrapStorage(s.provider.DeleteTask(ctx, id), ErrUnknownTask)
}

func (s *Store) GetEntry(ctx context.Context, id string) (models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.provider.GetEntry(ctx, id)
	if err != nil {
		return models.TimeEntry{}, wrapStorage(err, ErrUnknownEntry)
	}
	return e, nil
}

// FindEntriesInRange returns entries intersecting [start, end) ordered by
// start ascending.
func (s *Store) FindEntriesInRange(ctx context.Context, start, end time.Time) ([]models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := s.provider.FindEntriesInRange(ctx, start, end)
	if err != nil {
		return nil, wrapStorage(err, ErrUnknownEntry)
	}
	return entries, nil
}
