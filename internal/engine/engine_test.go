package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"pillarlog/internal/models"
	"pillarlog/internal/storage"
)

// testClock hands out strictly increasing instants so created_at ordering is
// deterministic.
type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func (c *testClock) Set(t time.Time) {
	c.current = t
}

func newTestFacade() (*Facade, *testClock) {
	clock := newTestClock()
	return New(storage.NewMemoryStore()).WithClock(clock.Now), clock
}

// at builds an aligned timestamp on 2026-03-02 (a Monday) plus day offset.
func at(day, hour, min int) time.Time {
	return time.Date(2026, 3, 2+day, hour, min, 0, 0, time.UTC)
}

func mustCreateGoal(t *testing.T, f *Facade, spec GoalSpec) models.Goal {
	t.Helper()
	g, err := f.CreateGoal(context.Background(), spec)
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	return g
}

func mustCreateTask(t *testing.T, f *Facade, spec TaskSpec) models.Task {
	t.Helper()
	task, err := f.CreateTask(context.Background(), spec)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func mustPlace(t *testing.T, f *Facade, taskID string, start, end time.Time) models.TimeEntry {
	t.Helper()
	e, err := f.PlaceEntry(context.Background(), taskID, start, end, "")
	if err != nil {
		t.Fatalf("PlaceEntry [%s, %s): %v", start, end, err)
	}
	return e
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func pillarPtr(p models.Pillar) *models.Pillar { return &p }
