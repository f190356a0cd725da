package storage

import (
	"context"
	"errors"
	"time"

	"pillarlog/internal/models"
)

// ErrNotFound is returned (wrapped) by any lookup whose id does not exist.
var ErrNotFound = errors.New("not found")

// Provider is a persistence adapter for one owner's schedule. Adapters are
// plain indexed CRUD: domain invariants (alignment, overlap, pillar match)
// are enforced above them by the engine, which also serializes mutations.
// Every adapter must keep its secondary indexes consistent with the primary
// records within a single call.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error

	// Goals
	PutGoal(ctx context.Context, g models.Goal) error
	GetGoal(ctx context.Context, id string) (models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	ListGoals(ctx context.Context) ([]models.Goal, error)

	// Tasks
	PutTask(ctx context.Context, t models.Task) error
	GetTask(ctx context.Context, id string) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListTasksByGoal(ctx context.Context, goalID string) ([]models.Task, error)
	ListTasksByPillar(ctx context.Context, p models.Pillar) ([]models.Task, error)

	// Time entries
	PutEntry(ctx context.Context, e models.TimeEntry) error
	GetEntry(ctx context.Context, id string) (models.TimeEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	// FindEntriesInRange returns entries intersecting the half-open range
	// [start, end), ordered by start ascending then id.
	FindEntriesInRange(ctx context.Context, start, end time.Time) ([]models.TimeEntry, error)
	ListEntriesByTask(ctx context.Context, taskID string) ([]models.TimeEntry, error)
}
