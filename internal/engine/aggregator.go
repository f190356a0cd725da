package engine

import (
	"context"
	"errors"
	"time"

	"pillarlog/internal/models"
	"pillarlog/internal/storage"
	"pillarlog/internal/timeslot"
)

// Aggregator computes calendar views and analytics rollups. Everything here
// is a pure read over Store truth; nothing is cached or persisted, so a view
// can never go stale relative to the entities.
type Aggregator struct {
	store *Store
}

func NewAggregator(store *Store) *Aggregator {
	return &Aggregator{store: store}
}

// SlotCell is one 30-minute cell of a daily grid. Empty cells carry a nil
// Entry so renderers can draw the full day without inferring gaps. An entry
// spanning several slots appears in each of them.
type SlotCell struct {
	Index int               `json:"index"`
	Start time.Time         `json:"start"`
	Entry *models.TimeEntry `json:"entry,omitempty"`
}

// DailyView returns all 48 slots of day's civil date, in day's location.
func (a *Aggregator) DailyView(ctx context.Context, day time.Time) ([]SlotCell, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return a.dailyViewLocked(ctx, day)
}

func (a *Aggregator) dailyViewLocked(ctx context.Context, day time.Time) ([]SlotCell, error) {
	dayStart := timeslot.DayStart(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	cells := make([]SlotCell, timeslot.SlotsPerDay)
	for i := range cells {
		cells[i] = SlotCell{Index: i, Start: dayStart.Add(time.Duration(i) * timeslot.SlotDuration)}
	}

	entries, err := a.store.provider.FindEntriesInRange(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, wrapStorage(err, ErrUnknownEntry)
	}
	for i := range entries {
		e := entries[i]
		first := timeslot.Index(e.Start, dayStart)
		last := timeslot.Index(e.End, dayStart) - 1
		if first < 0 {
			first = 0
		}
		if last > timeslot.SlotsPerDay-1 {
			last = timeslot.SlotsPerDay - 1
		}
		for s := first; s <= last; s++ {
			cells[s].Entry = &entries[i]
		}
	}
	return cells, nil
}

// WeeklyView returns daily grids for the 7 days starting at weekStart, keyed
// by civil date. The anchor is taken as given; it is not snapped to any
// particular weekday.
func (a *Aggregator) WeeklyView(ctx context.Context, weekStart time.Time) (map[string][]SlotCell, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	week := make(map[string][]SlotCell, 7)
	day := timeslot.DayStart(weekStart)
	for i := 0; i < 7; i++ {
		cells, err := a.dailyViewLocked(ctx, day)
		if err != nil {
			return nil, err
		}
		week[day.Format("2006-01-02")] = cells
		day = day.AddDate(0, 0, 1)
	}
	return week, nil
}

// MonthlyView returns total minutes per pillar for each day of the month, in
// loc. Deliberately coarser than the daily grid: it is a density overview,
// not an editing surface. Every day and every pillar is present, zeros
// included.
func (a *Aggregator) MonthlyView(ctx context.Context, year int, month time.Month, loc *time.Location) (map[string]map[models.Pillar]int, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	view := make(map[string]map[models.Pillar]int)
	day := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	for day.Month() == month {
		next := day.AddDate(0, 0, 1)
		totals, err := a.pillarTotalsLocked(ctx, day, next)
		if err != nil {
			return nil, err
		}
		view[day.Format("2006-01-02")] = totals
		day = next
	}
	return view, nil
}

// PillarTotals sums entry durations per pillar over [start, end). Entries
// straddling a boundary contribute only their overlapping portion.
func (a *Aggregator) PillarTotals(ctx context.Context, start, end time.Time) (map[models.Pillar]int, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return a.pillarTotalsLocked(ctx, start, end)
}

func (a *Aggregator) pillarTotalsLocked(ctx context.Context, start, end time.Time) (map[models.Pillar]int, error) {
	totals := make(map[models.Pillar]int, 3)
	for _, p := range models.Pillars() {
		totals[p] = 0
	}

	entries, err := a.store.provider.FindEntriesInRange(ctx, start, end)
	if err != nil {
		return nil, wrapStorage(err, ErrUnknownEntry)
	}

	taskPillar := make(map[string]*models.Pillar)
	for _, e := range entries {
		pillar, ok := taskPillar[e.TaskID]
		if !ok {
			t, err := a.store.provider.GetTask(ctx, e.TaskID)
			switch {
			case err == nil:
				taskPillar[e.TaskID] = &t.Pillar
			case errors.Is(err, storage.ErrNotFound):
				// detached entry: occupies the grid but has no pillar
				taskPillar[e.TaskID] = nil
			default:
				// environmental failure, never an understated total
				return nil, wrapStorage(err, ErrUnknownTask)
			}
			pillar = taskPillar[e.TaskID]
		}
		if pillar == nil {
			continue
		}
		totals[*pillar] += overlapMinutes(e, start, end)
	}
	return totals, nil
}

// Progress is the derived completion state of a goal. For minutes targets,
// PercentComplete is accumulated/target capped at 100. For flag targets it
// is 100 once any entry inside the period is logged, else 0.
type Progress struct {
	GoalID             string `json:"goal_id"`
	AccumulatedMinutes int    `json:"accumulated_minutes"`
	TargetMinutes      int    `json:"target_minutes,omitempty"`
	TargetDone         bool   `json:"target_done,omitempty"`
	PercentComplete    int    `json:"percent_complete"`
}

// GoalProgress recomputes progress from stored truth. Entries outside the
// goal's own period are excluded: logging against a finished goal is
// allowed, it just no longer counts.
func (a *Aggregator) GoalProgress(ctx context.Context, goalID string) (Progress, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return a.goalProgressLocked(ctx, goalID)
}

func (a *Aggregator) goalProgressLocked(ctx context.Context, goalID string) (Progress, error) {
	g, err := a.store.provider.GetGoal(ctx, goalID)
	if err != nil {
		return Progress{}, wrapStorage(err, ErrUnknownGoal)
	}

	tasks, err := a.store.provider.ListTasksByGoal(ctx, goalID)
	if err != nil {
		return Progress{}, wrapStorage(err, ErrUnknownGoal)
	}

	accumulated := 0
	for _, t := range tasks {
		entries, err := a.store.provider.ListEntriesByTask(ctx, t.ID)
		if err != nil {
			return Progress{}, wrapStorage(err, ErrUnknownEntry)
		}
		for _, e := range entries {
			accumulated += overlapMinutes(e, g.PeriodStart, g.PeriodEnd)
		}
	}

	p := Progress{
		GoalID:             goalID,
		AccumulatedMinutes: accumulated,
		TargetMinutes:      g.TargetMinutes,
		TargetDone:         g.TargetDone,
	}
	switch {
	case g.TargetMinutes > 0:
		p.PercentComplete = accumulated * 100 / g.TargetMinutes
		if p.PercentComplete > 100 {
			p.PercentComplete = 100
		}
	case accumulated > 0:
		p.PercentComplete = 100
	}
	return p, nil
}

// GoalWithProgress pairs a goal with its derived progress for list reads.
type GoalWithProgress struct {
	Goal     models.Goal `json:"goal"`
	Progress Progress    `json:"progress"`
}

// Overview is the dashboard read: the trailing window's per-pillar totals,
// the goals whose period covers now, and non-terminal tasks due within the
// window horizon (or overdue).
type Overview struct {
	WindowStart  time.Time             `json:"window_start"`
	WindowEnd    time.Time             `json:"window_end"`
	PerPillar    map[models.Pillar]int `json:"per_pillar"`
	ActiveGoals  []GoalWithProgress    `json:"active_goals"`
	TasksDueSoon []models.Task         `json:"tasks_due_soon"`
}

// dashboardWindow is the default overview span.
const dashboardWindow = 7 * 24 * time.Hour

func (a *Aggregator) DashboardOverview(ctx context.Context) (Overview, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	now := a.store.now()
	o := Overview{
		WindowStart: now.Add(-dashboardWindow),
		WindowEnd:   now,
	}

	totals, err := a.pillarTotalsLocked(ctx, o.WindowStart, o.WindowEnd)
	if err != nil {
		return Overview{}, err
	}
	o.PerPillar = totals

	goals, err := a.store.provider.ListGoals(ctx)
	if err != nil {
		return Overview{}, wrapStorage(err, ErrUnknownGoal)
	}
	for _, g := range goals {
		if !g.ContainsInstant(now) {
			continue
		}
		progress, err := a.goalProgressLocked(ctx, g.ID)
		if err != nil {
			return Overview{}, err
		}
		o.ActiveGoals = append(o.ActiveGoals, GoalWithProgress{Goal: g, Progress: progress})
	}

	tasks, err := a.store.provider.ListTasks(ctx)
	if err != nil {
		return Overview{}, wrapStorage(err, ErrUnknownTask)
	}
	horizon := now.Add(dashboardWindow)
	for _, t := range tasks {
		if t.Status.IsTerminal() || t.DueBy == nil {
			continue
		}
		if t.DueBy.Before(horizon) {
			o.TasksDueSoon = append(o.TasksDueSoon, t)
		}
	}
	return o, nil
}

// overlapMinutes returns the minutes of e's interval that fall inside the
// half-open range [start, end).
func overlapMinutes(e models.TimeEntry, start, end time.Time) int {
	s := e.Start
	if s.Before(start) {
		s = start
	}
	t := e.End
	if t.After(end) {
		t = end
	}
	if !t.After(s) {
		return 0
	}
	return int(t.Sub(s) / time.Minute)
}
