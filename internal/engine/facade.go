package engine

import (
	"context"
	"time"

	"pillarlog/internal/models"
	"pillarlog/internal/storage"
)

// Facade is the single surface the transport layer talks to. It only
// translates: writes go to the scheduler or store, reads to the aggregator,
// and every failure carries one of the stable kinds from errors.go; the
// facade never invents new ones.
type Facade struct {
	store *Store
	sched *Scheduler
	agg   *Aggregator
}

func New(p storage.Provider) *Facade {
	store := NewStore(p)
	return &Facade{
		store: store,
		sched: NewScheduler(store),
		agg:   NewAggregator(store),
	}
}

// WithClock overrides the engine clock. Intended for tests.
func (f *Facade) WithClock(now func() time.Time) *Facade {
	f.store.now = now
	return f
}

// Store exposes the entity store for audit tooling; transports should stick
// to the facade methods.
func (f *Facade) Store() *Store { return f.store }

// Views

func (f *Facade) DailyView(ctx context.Context, day time.Time) ([]SlotCell, error) {
	return f.agg.DailyView(ctx, day)
}

func (f *Facade) WeeklyView(ctx context.Context, weekStart time.Time) (map[string][]SlotCell, error) {
	return f.agg.WeeklyView(ctx, weekStart)
}

func (f *Facade) MonthlyView(ctx context.Context, year int, month time.Month, loc *time.Location) (map[string]map[models.Pillar]int, error) {
	return f.agg.MonthlyView(ctx, year, month, loc)
}

func (f *Facade) PillarTotals(ctx context.Context, start, end time.Time) (map[models.Pillar]int, error) {
	return f.agg.PillarTotals(ctx, start, end)
}

func (f *Facade) GoalProgress(ctx context.Context, goalID string) (Progress, error) {
	return f.agg.GoalProgress(ctx, goalID)
}

func (f *Facade) DashboardOverview(ctx context.Context) (Overview, error) {
	return f.agg.DashboardOverview(ctx)
}

// Goals

func (f *Facade) CreateGoal(ctx context.Context, spec GoalSpec) (models.Goal, error) {
	return f.store.CreateGoal(ctx, spec)
}

func (f *Facade) UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (models.Goal, error) {
	return f.store.UpdateGoal(ctx, id, upd)
}

func (f *Facade) ListGoals(ctx context.Context, pillar *models.Pillar) ([]models.Goal, error) {
	return f.store.ListGoals(ctx, pillar)
}

func (f *Facade) DeleteGoal(ctx context.Context, id string) error {
	return f.store.DeleteGoal(ctx, id)
}

// Tasks

func (f *Facade) CreateTask(ctx context.Context, spec TaskSpec) (models.Task, error) {
	return f.store.CreateTask(ctx, spec)
}

func (f *Facade) UpdateTask(ctx context.Context, id string, upd TaskUpdate) (models.Task, error) {
	return f.store.UpdateTask(ctx, id, upd)
}

func (f *Facade) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	return f.store.ListTasks(ctx, filter)
}

func (f *Facade) TransitionTask(ctx context.Context, id string, next models.TaskStatus) (models.Task, error) {
	return f.store.TransitionTask(ctx, id, next)
}

func (f *Facade) DeleteTask(ctx context.Context, id string) error {
	return f.store.DeleteTask(ctx, id)
}

// Time entries

func (f *Facade) PlaceEntry(ctx context.Context, taskID string, start, end time.Time, note string) (models.TimeEntry, error) {
	return f.sched.Place(ctx, taskID, start, end, note)
}

func (f *Facade) MoveEntry(ctx context.Context, entryID string, newStart, newEnd time.Time) (models.TimeEntry, error) {
	return f.sched.Move(ctx, entryID, newStart, newEnd)
}

func (f *Facade) RemoveEntry(ctx context.Context, entryID string) error {
	return f.sched.Remove(ctx, entryID)
}
