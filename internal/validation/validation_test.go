package validation

import (
	"testing"
	"time"

	"pillarlog/internal/models"
)

func ts(hour, min int) time.Time {
	return time.Date(2026, 5, 4, hour, min, 0, 0, time.UTC)
}

func TestValidateEntriesCleanSchedule(t *testing.T) {
	tasks := map[string]models.Task{
		"t1": {ID: "t1", Pillar: models.PillarHardWork},
	}
	entries := []models.TimeEntry{
		{ID: "a", TaskID: "t1", Start: ts(9, 0), End: ts(10, 0)},
		{ID: "b", TaskID: "t1", Start: ts(10, 0), End: ts(10, 30)},
	}

	result := New().ValidateEntries(entries, tasks)
	if result.HasConflicts() {
		t.Errorf("clean schedule reported conflicts:\n%s", result.FormatReport())
	}
	if got := result.FormatReport(); got != "no conflicts found" {
		t.Errorf("report = %q", got)
	}
}

func TestValidateEntriesDetectsOverlap(t *testing.T) {
	tasks := map[string]models.Task{"t1": {ID: "t1"}}
	entries := []models.TimeEntry{
		{ID: "a", TaskID: "t1", Start: ts(9, 0), End: ts(10, 0)},
		{ID: "b", TaskID: "t1", Start: ts(9, 30), End: ts(10, 30)},
	}

	result := New().ValidateEntries(entries, tasks)
	if len(result.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1:\n%s", len(result.Conflicts), result.FormatReport())
	}
	c := result.Conflicts[0]
	if c.Type != ConflictOverlap || c.EntryID != "b" || c.OtherID != "a" {
		t.Errorf("unexpected conflict: %+v", c)
	}
}

func TestValidateEntriesDetectsOverlapsPastSuccessor(t *testing.T) {
	tasks := map[string]models.Task{"t1": {ID: "t1"}}
	// a spans past b and also collides with c further down the scan
	entries := []models.TimeEntry{
		{ID: "a", TaskID: "t1", Start: ts(9, 0), End: ts(12, 0)},
		{ID: "b", TaskID: "t1", Start: ts(9, 30), End: ts(10, 0)},
		{ID: "c", TaskID: "t1", Start: ts(10, 30), End: ts(11, 0)},
	}

	result := New().ValidateEntries(entries, tasks)
	if len(result.Conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2:\n%s", len(result.Conflicts), result.FormatReport())
	}
	for i, wantEntry := range []string{"b", "c"} {
		c := result.Conflicts[i]
		if c.Type != ConflictOverlap || c.EntryID != wantEntry || c.OtherID != "a" {
			t.Errorf("conflict %d: %+v, want %s overlapping a", i, c, wantEntry)
		}
	}
}

func TestValidateEntriesDetectsMisalignmentAndInversion(t *testing.T) {
	tasks := map[string]models.Task{"t1": {ID: "t1"}}
	entries := []models.TimeEntry{
		{ID: "skewed", TaskID: "t1", Start: ts(9, 5), End: ts(9, 35)},
		{ID: "backwards", TaskID: "t1", Start: ts(12, 0), End: ts(11, 0)},
	}

	result := New().ValidateEntries(entries, tasks)
	types := map[ConflictType]int{}
	for _, c := range result.Conflicts {
		types[c.Type]++
	}
	if types[ConflictMisaligned] != 1 {
		t.Errorf("misaligned count = %d, want 1", types[ConflictMisaligned])
	}
	if types[ConflictInverted] != 1 {
		t.Errorf("inverted count = %d, want 1", types[ConflictInverted])
	}
}

func TestValidateEntriesDetectsDanglingTask(t *testing.T) {
	entries := []models.TimeEntry{
		{ID: "orphan", TaskID: "gone", Start: ts(9, 0), End: ts(9, 30)},
	}

	result := New().ValidateEntries(entries, map[string]models.Task{})
	if len(result.Conflicts) != 1 || result.Conflicts[0].Type != ConflictDanglingTask {
		t.Errorf("conflicts: %+v", result.Conflicts)
	}
}

func TestValidateTasks(t *testing.T) {
	goals := map[string]models.Goal{
		"g1": {ID: "g1", Pillar: models.PillarCalmness},
	}
	tasks := []models.Task{
		{ID: "ok", GoalID: "g1", Pillar: models.PillarCalmness},
		{ID: "wrong-pillar", GoalID: "g1", Pillar: models.PillarHardWork},
		{ID: "orphan", GoalID: "g2", Pillar: models.PillarFamily},
		{ID: "unlinked", Pillar: models.PillarHardWork},
	}

	result := New().ValidateTasks(tasks, goals)
	if len(result.Conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2:\n%s", len(result.Conflicts), result.FormatReport())
	}
	byEntry := map[string]ConflictType{}
	for _, c := range result.Conflicts {
		byEntry[c.EntryID] = c.Type
	}
	if byEntry["wrong-pillar"] != ConflictPillarMismatch {
		t.Errorf("wrong-pillar: %s", byEntry["wrong-pillar"])
	}
	if byEntry["orphan"] != ConflictDanglingTask {
		t.Errorf("orphan: %s", byEntry["orphan"])
	}
}
