// Package validation audits a stored schedule against the engine's
// invariants. The write path already enforces these; the audit exists for
// operators inspecting imported or hand-edited data, where violations can
// predate the engine.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pillarlog/internal/models"
	"pillarlog/internal/timeslot"
)

type ConflictType string

const (
	ConflictOverlap        ConflictType = "overlap"
	ConflictMisaligned     ConflictType = "misaligned"
	ConflictInverted       ConflictType = "inverted_interval"
	ConflictDanglingTask   ConflictType = "dangling_task"
	ConflictPillarMismatch ConflictType = "pillar_mismatch"
)

type Conflict struct {
	Type    ConflictType
	EntryID string
	OtherID string
	Detail  string
}

type Result struct {
	Conflicts []Conflict
}

func (r Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

func (r Result) FormatReport() string {
	if !r.HasConflicts() {
		return "no conflicts found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d conflict(s):\n", len(r.Conflicts))
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "  [%s] %s\n", c.Type, c.Detail)
	}
	return strings.TrimRight(b.String(), "\n")
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateEntries checks alignment, interval sanity, non-overlap, and task
// references for a full set of entries. tasks maps task id to task; entries
// referencing ids outside it are reported as dangling.
func (v *Validator) ValidateEntries(entries []models.TimeEntry, tasks map[string]models.Task) Result {
	var result Result

	for _, e := range entries {
		if !e.End.After(e.Start) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictInverted,
				EntryID: e.ID,
				Detail:  fmt.Sprintf("entry %s has end at or before start", e.ID),
			})
		}
		if !timeslot.Aligned(e.Start) || !timeslot.Aligned(e.End) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictMisaligned,
				EntryID: e.ID,
				Detail:  fmt.Sprintf("entry %s is off the 30-minute grid", e.ID),
			})
		}
		if _, ok := tasks[e.TaskID]; !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictDanglingTask,
				EntryID: e.ID,
				Detail:  fmt.Sprintf("entry %s references missing task %s", e.ID, e.TaskID),
			})
		}
	}

	sorted := make([]models.TimeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].ID < sorted[j].ID
	})
	// Comparing against the immediate predecessor is not enough: a long entry
	// can span past its successor and collide with entries further on. Track
	// the furthest-reaching interval seen so far instead.
	var openID string
	var openEnd time.Time
	for _, cur := range sorted {
		if openID != "" && cur.Start.Before(openEnd) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictOverlap,
				EntryID: cur.ID,
				OtherID: openID,
				Detail:  fmt.Sprintf("entry %s overlaps entry %s", cur.ID, openID),
			})
		}
		if openID == "" || cur.End.After(openEnd) {
			openID, openEnd = cur.ID, cur.End
		}
	}

	return result
}

// ValidateTasks checks goal links: a task linked to a goal must carry the
// goal's pillar, and the goal must exist.
func (v *Validator) ValidateTasks(tasks []models.Task, goals map[string]models.Goal) Result {
	var result Result
	for _, t := range tasks {
		if t.GoalID == "" {
			continue
		}
		g, ok := goals[t.GoalID]
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictDanglingTask,
				EntryID: t.ID,
				Detail:  fmt.Sprintf("task %s references missing goal %s", t.ID, t.GoalID),
			})
			continue
		}
		if t.Pillar != g.Pillar {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictPillarMismatch,
				EntryID: t.ID,
				OtherID: g.ID,
				Detail:  fmt.Sprintf("task %s pillar %s does not match goal %s pillar %s", t.ID, t.Pillar, g.ID, g.Pillar),
			})
		}
	}
	return result
}
