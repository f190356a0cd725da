package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pillarlog/internal/models"
	"pillarlog/internal/timeslot"
)

// Scheduler is the only path that creates or relocates time entries and the
// authority on slot conflicts. It shares the Store's exclusive section, so
// the read-validate-write of a placement is atomic with respect to every
// other mutation.
type Scheduler struct {
	store *Store
}

func NewScheduler(store *Store) *Scheduler {
	return &Scheduler{store: store}
}

// Place books [start, end) against a task. Both endpoints must sit on the
// 30-minute grid; unaligned input is rejected, never rounded. On overlap the
// error names the earliest-start colliding entry.
func (sc *Scheduler) Place(ctx context.Context, taskID string, start, end time.Time, note string) (models.TimeEntry, error) {
	if err := checkInterval(start, end); err != nil {
		return models.TimeEntry{}, err
	}

	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.provider.GetTask(ctx, taskID); err != nil {
		return models.TimeEntry{}, wrapStorage(err, ErrUnknownTask)
	}
	if err := sc.checkConflicts(ctx, start, end, ""); err != nil {
		return models.TimeEntry{}, err
	}

	e := models.TimeEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Start:     start,
		End:       end,
		Note:      note,
		CreatedAt: s.now(),
	}
	if err := s.provider.PutEntry(ctx, e); err != nil {
		return models.TimeEntry{}, wrapStorage(err, ErrUnknownEntry)
	}
	return e, nil
}

// Move revalidates alignment and overlap for the new bounds, excluding the
// entry itself from the conflict candidates.
func (sc *Scheduler) Move(ctx context.Context, entryID string, newStart, newEnd time.Time) (models.TimeEntry, error) {
	if err := checkInterval(newStart, newEnd); err != nil {
		return models.TimeEntry{}, err
	}

	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.provider.GetEntry(ctx, entryID)
	if err != nil {
		return models.TimeEntry{}, wrapStorage(err, ErrUnknownEntry)
	}
	if err := sc.checkConflicts(ctx, newStart, newEnd, entryID); err != nil {
		return models.TimeEntry{}, err
	}

	e.Start = newStart
	e.End = newEnd
	if err := s.provider.PutEntry(ctx, e); err != nil {
		return models.TimeEntry{}, wrapStorage(err, ErrUnknownEntry)
	}
	return e, nil
}

func (sc *Scheduler) Remove(ctx context.Context, entryID string) error {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return wrapStorage(s.provider.DeleteEntry(ctx, entryID), ErrUnknownEntry)
}

// checkConflicts must run inside the store's exclusive section.
func (sc *Scheduler) checkConflicts(ctx context.Context, start, end time.Time, excludeID string) error {
	existing, err := sc.store.provider.FindEntriesInRange(ctx, start, end)
	if err != nil {
		return wrapStorage(err, ErrUnknownEntry)
	}

	var collider *models.TimeEntry
	for i := range existing {
		e := &existing[i]
		if e.ID == excludeID {
			continue
		}
		if collider == nil || entryBefore(*e, *collider) {
			collider = e
		}
	}
	if collider != nil {
		return conflictf(collider.ID, "interval [%s, %s) overlaps entry %s [%s, %s)",
			start.Format(time.RFC3339), end.Format(time.RFC3339),
			collider.ID, collider.Start.Format(time.RFC3339), collider.End.Format(time.RFC3339))
	}
	return nil
}

func checkInterval(start, end time.Time) error {
	if !timeslot.Aligned(start) {
		return failf(ErrInvalidAlignment, "start %s is not on a slot boundary", start.Format(time.RFC3339Nano))
	}
	if !timeslot.Aligned(end) {
		return failf(ErrInvalidAlignment, "end %s is not on a slot boundary", end.Format(time.RFC3339Nano))
	}
	if !end.After(start) {
		return failf(ErrValidation, "entry end %s must be after start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}

// entryBefore is the deterministic conflict order: earliest start, then
// earliest creation, then id. UUIDs are not monotonic, so creation time is
// the stable secondary key.
func entryBefore(a, b models.TimeEntry) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
