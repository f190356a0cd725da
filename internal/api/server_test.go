package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pillarlog/internal/engine"
	"pillarlog/internal/models"
	"pillarlog/internal/storage"
)

func newTestServer() *Server {
	return New(engine.New(storage.NewMemoryStore()), time.UTC)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func wireError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	wrapped := decode[map[string]errorBody](t, w)
	return wrapped["error"]
}

func createTask(t *testing.T, s *Server, title string, pillar models.Pillar) models.Task {
	t.Helper()
	w := doJSON(t, s, "POST", "/api/tasks", map[string]any{
		"title":  title,
		"pillar": pillar.String(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: %d %s", w.Code, w.Body.String())
	}
	return decode[models.Task](t, w)
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	w := doJSON(t, s, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
}

func TestEntryLifecycleOverHTTP(t *testing.T) {
	s := newTestServer()
	task := createTask(t, s, "Deep work", models.PillarHardWork)

	w := doJSON(t, s, "POST", "/api/entries", map[string]any{
		"task_id": task.ID,
		"start":   "2026-03-02T09:00:00Z",
		"end":     "2026-03-02T10:00:00Z",
		"note":    "focus block",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("place entry: %d %s", w.Code, w.Body.String())
	}
	entry := decode[models.TimeEntry](t, w)
	if entry.Note != "focus block" || entry.TaskID != task.ID {
		t.Errorf("entry came back as %+v", entry)
	}

	// move it an hour later
	w = doJSON(t, s, "PATCH", "/api/entries/"+entry.ID, map[string]any{
		"start": "2026-03-02T10:00:00Z",
		"end":   "2026-03-02T11:00:00Z",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("move entry: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, "DELETE", "/api/entries/"+entry.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete entry: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, "DELETE", "/api/entries/"+entry.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d, want 404", w.Code)
	}
	if e := wireError(t, w); e.Kind != "unknown_entry" {
		t.Errorf("error kind %q", e.Kind)
	}
}

func TestEntryConflictWireShape(t *testing.T) {
	s := newTestServer()
	task := createTask(t, s, "Calls", models.PillarHardWork)

	w := doJSON(t, s, "POST", "/api/entries", map[string]any{
		"task_id": task.ID,
		"start":   "2026-03-02T09:00:00Z",
		"end":     "2026-03-02T10:00:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("first entry: %d %s", w.Code, w.Body.String())
	}
	first := decode[models.TimeEntry](t, w)

	w = doJSON(t, s, "POST", "/api/entries", map[string]any{
		"task_id": task.ID,
		"start":   "2026-03-02T09:30:00Z",
		"end":     "2026-03-02T10:30:00Z",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("overlapping entry: %d, want 409", w.Code)
	}
	e := wireError(t, w)
	if e.Kind != "slot_conflict" {
		t.Errorf("error kind %q, want slot_conflict", e.Kind)
	}
	if e.ConflictEntryID != first.ID {
		t.Errorf("conflict_entry_id %q, want %q", e.ConflictEntryID, first.ID)
	}
}

func TestEntryMisalignedIsBadRequest(t *testing.T) {
	s := newTestServer()
	task := createTask(t, s, "Sloppy", models.PillarCalmness)

	w := doJSON(t, s, "POST", "/api/entries", map[string]any{
		"task_id": task.ID,
		"start":   "2026-03-02T09:05:00Z",
		"end":     "2026-03-02T09:35:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("misaligned entry: %d, want 400", w.Code)
	}
	if e := wireError(t, w); e.Kind != "invalid_alignment" {
		t.Errorf("error kind %q", e.Kind)
	}
}

func TestGoalEndpoints(t *testing.T) {
	s := newTestServer()

	w := doJSON(t, s, "POST", "/api/goals", map[string]any{
		"pillar":         "calmness",
		"title":          "Meditate more",
		"period_start":   "2026-03-02T00:00:00Z",
		"period_end":     "2026-03-09T00:00:00Z",
		"target_minutes": 120,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create goal: %d %s", w.Code, w.Body.String())
	}
	goal := decode[models.Goal](t, w)

	// a task under the goal, with an hour logged
	w = doJSON(t, s, "POST", "/api/tasks", map[string]any{
		"title":   "Morning meditation",
		"goal_id": goal.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: %d %s", w.Code, w.Body.String())
	}
	task := decode[models.Task](t, w)
	if task.Pillar != models.PillarCalmness {
		t.Errorf("task did not inherit pillar: %s", task.Pillar)
	}

	w = doJSON(t, s, "POST", "/api/entries", map[string]any{
		"task_id": task.ID,
		"start":   "2026-03-03T07:00:00Z",
		"end":     "2026-03-03T08:00:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("place entry: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, "GET", "/api/goals/"+goal.ID+"/progress", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("progress: %d %s", w.Code, w.Body.String())
	}
	progress := decode[engine.Progress](t, w)
	if progress.AccumulatedMinutes != 60 || progress.PercentComplete != 50 {
		t.Errorf("progress %+v, want 60 minutes / 50%%", progress)
	}

	w = doJSON(t, s, "GET", "/api/goals?pillar=calmness", nil)
	goals := decode[[]models.Goal](t, w)
	if len(goals) != 1 {
		t.Errorf("filtered goals: %+v", goals)
	}

	w = doJSON(t, s, "GET", "/api/goals?pillar=leisure", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bogus pillar filter: %d, want 400", w.Code)
	}

	w = doJSON(t, s, "DELETE", "/api/goals/"+goal.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete goal: %d", w.Code)
	}
	w = doJSON(t, s, "GET", "/api/goals/"+goal.ID+"/progress", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("progress of deleted goal: %d, want 404", w.Code)
	}
}

func TestUpdateEndpoints(t *testing.T) {
	s := newTestServer()

	w := doJSON(t, s, "POST", "/api/goals", map[string]any{
		"pillar":         "hard_work",
		"title":          "Draft",
		"period_start":   "2026-03-02T00:00:00Z",
		"period_end":     "2026-03-09T00:00:00Z",
		"target_minutes": 120,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create goal: %d %s", w.Code, w.Body.String())
	}
	goal := decode[models.Goal](t, w)

	w = doJSON(t, s, "PATCH", "/api/goals/"+goal.ID, map[string]any{"title": "Final"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch goal: %d %s", w.Code, w.Body.String())
	}
	if got := decode[models.Goal](t, w); got.Title != "Final" || got.TargetMinutes != 120 {
		t.Errorf("patched goal %+v", got)
	}

	task := createTask(t, s, "Rough", models.PillarHardWork)
	w = doJSON(t, s, "PATCH", "/api/tasks/"+task.ID, map[string]any{
		"title":            "Polished",
		"estimate_minutes": 45,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch task: %d %s", w.Code, w.Body.String())
	}
	if got := decode[models.Task](t, w); got.Title != "Polished" || got.EstimateMinutes != 45 {
		t.Errorf("patched task %+v", got)
	}

	w = doJSON(t, s, "PATCH", "/api/tasks/"+task.ID, map[string]any{"title": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty title patch: %d, want 400", w.Code)
	}
}

func TestTaskStatusEndpoint(t *testing.T) {
	s := newTestServer()
	task := createTask(t, s, "Lifecycle", models.PillarHardWork)

	w := doJSON(t, s, "POST", "/api/tasks/"+task.ID+"/status", map[string]any{"status": "in_progress"})
	if w.Code != http.StatusOK {
		t.Fatalf("to in_progress: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, s, "POST", "/api/tasks/"+task.ID+"/status", map[string]any{"status": "done"})
	if w.Code != http.StatusOK {
		t.Fatalf("to done: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, "POST", "/api/tasks/"+task.ID+"/status", map[string]any{"status": "in_progress"})
	if w.Code != http.StatusConflict {
		t.Fatalf("reopening done task: %d, want 409", w.Code)
	}
	if e := wireError(t, w); e.Kind != "invalid_transition" {
		t.Errorf("error kind %q", e.Kind)
	}
}

func TestDailyViewEndpoint(t *testing.T) {
	s := newTestServer()
	task := createTask(t, s, "Gridded", models.PillarFamily)

	w := doJSON(t, s, "POST", "/api/entries", map[string]any{
		"task_id": task.ID,
		"start":   "2026-03-02T09:00:00Z",
		"end":     "2026-03-02T09:30:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("place entry: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, "GET", "/api/views/daily?date=2026-03-02", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("daily view: %d %s", w.Code, w.Body.String())
	}
	var view struct {
		Date  string            `json:"date"`
		Slots []engine.SlotCell `json:"slots"`
	}
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Date != "2026-03-02" || len(view.Slots) != 48 {
		t.Fatalf("view %s with %d slots", view.Date, len(view.Slots))
	}
	if view.Slots[18].Entry == nil {
		t.Error("09:00 slot should be occupied")
	}

	// bad inputs
	for _, path := range []string{
		"/api/views/daily?date=yesterday",
		"/api/views/daily?date=2026-03-02&tz=Mars%2FOlympus",
		"/api/views/monthly?month=March",
	} {
		w = doJSON(t, s, "GET", path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: %d, want 400", path, w.Code)
		}
	}
}

func TestDashboardEndpoint(t *testing.T) {
	s := newTestServer()
	w := doJSON(t, s, "GET", "/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
	}
	overview := decode[engine.Overview](t, w)
	if len(overview.PerPillar) != 3 {
		t.Errorf("per_pillar has %d pillars, want 3", len(overview.PerPillar))
	}
	if span := overview.WindowEnd.Sub(overview.WindowStart); span != 7*24*time.Hour {
		t.Errorf("window span %s, want 7 days", span)
	}
}

func TestListEndpointsReturnEmptyArrays(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{"/api/goals", "/api/tasks"} {
		w := doJSON(t, s, "GET", path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, w.Code)
		}
		body := w.Body.String()
		if body != "[]\n" {
			t.Errorf("%s body = %q, want empty JSON array", path, body)
		}
	}
}
