package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pillarlog/internal/models"
)

// PostgresStore is a Provider backed by a pgx connection pool. TIMESTAMPTZ
// columns preserve instants; like the sqlite adapter, wall-clock locations
// come back normalized and the facade re-applies the caller's.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Init creates the schema if it doesn't exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS goals (
			id             TEXT PRIMARY KEY,
			pillar         TEXT NOT NULL,
			title          TEXT NOT NULL,
			period_start   TIMESTAMPTZ NOT NULL,
			period_end     TIMESTAMPTZ NOT NULL,
			target_minutes INTEGER NOT NULL DEFAULT 0,
			target_done    BOOLEAN NOT NULL DEFAULT FALSE,
			created_at     TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			pillar           TEXT NOT NULL,
			goal_id          TEXT NOT NULL DEFAULT '',
			estimate_minutes INTEGER NOT NULL DEFAULT 0,
			due_by           TIMESTAMPTZ,
			status           TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_goal ON tasks(goal_id) WHERE goal_id != ''`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_pillar ON tasks(pillar)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS entries (
			id         TEXT PRIMARY KEY,
			task_id    TEXT NOT NULL,
			start_at   TIMESTAMPTZ NOT NULL,
			end_at     TIMESTAMPTZ NOT NULL,
			note       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_entries_range ON entries(start_at, end_at)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_entries_task ON entries(task_id)`)
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) PutGoal(ctx context.Context, g models.Goal) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO goals (id, pillar, title, period_start, period_end, target_minutes, target_done, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			pillar = EXCLUDED.pillar, title = EXCLUDED.title,
			period_start = EXCLUDED.period_start, period_end = EXCLUDED.period_end,
			target_minutes = EXCLUDED.target_minutes, target_done = EXCLUDED.target_done`,
		g.ID, g.Pillar.String(), g.Title, g.PeriodStart, g.PeriodEnd, g.TargetMinutes, g.TargetDone, g.CreatedAt)
	return err
}

func (s *PostgresStore) GetGoal(ctx context.Context, id string) (models.Goal, error) {
	var g models.Goal
	var pillar string
	err := s.pool.QueryRow(ctx, `
		SELECT id, pillar, title, period_start, period_end, target_minutes, target_done, created_at
		FROM goals WHERE id = $1`, id).
		Scan(&g.ID, &pillar, &g.Title, &g.PeriodStart, &g.PeriodEnd, &g.TargetMinutes, &g.TargetDone, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Goal{}, err
	}
	if g.Pillar, err = models.ParsePillar(pillar); err != nil {
		return models.Goal{}, fmt.Errorf("goal %s: %w", id, err)
	}
	return g, nil
}

func (s *PostgresStore) DeleteGoal(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListGoals(ctx context.Context) ([]models.Goal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, pillar, title, period_start, period_end, target_minutes, target_done, created_at
		FROM goals ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		var pillar string
		if err := rows.Scan(&g.ID, &pillar, &g.Title, &g.PeriodStart, &g.PeriodEnd, &g.TargetMinutes, &g.TargetDone, &g.CreatedAt); err != nil {
			return nil, err
		}
		if g.Pillar, err = models.ParsePillar(pillar); err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *PostgresStore) PutTask(ctx context.Context, t models.Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, pillar = EXCLUDED.pillar, goal_id = EXCLUDED.goal_id,
			estimate_minutes = EXCLUDED.estimate_minutes, due_by = EXCLUDED.due_by,
			status = EXCLUDED.status`,
		t.ID, t.Title, t.Pillar.String(), t.GoalID, t.EstimateMinutes, t.DueBy, string(t.Status), t.CreatedAt)
	return err
}

func (s *PostgresStore) GetTask(ctx context.Context, id string) (models.Task, error) {
	t, err := scanPgTask(s.pool.QueryRow(ctx, `
		SELECT id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at
		FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at
		FROM tasks ORDER BY created_at, id`)
}

func (s *PostgresStore) ListTasksByGoal(ctx context.Context, goalID string) ([]models.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at
		FROM tasks WHERE goal_id = $1 ORDER BY created_at, id`, goalID)
}

func (s *PostgresStore) ListTasksByPillar(ctx context.Context, p models.Pillar) ([]models.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at
		FROM tasks WHERE pillar = $1 ORDER BY created_at, id`, p.String())
}

func (s *PostgresStore) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanPgTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) PutEntry(ctx context.Context, e models.TimeEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO entries (id, task_id, start_at, end_at, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			task_id = EXCLUDED.task_id, start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at, note = EXCLUDED.note`,
		e.ID, e.TaskID, e.Start, e.End, e.Note, e.CreatedAt)
	return err
}

func (s *PostgresStore) GetEntry(ctx context.Context, id string) (models.TimeEntry, error) {
	var e models.TimeEntry
	err := s.pool.QueryRow(ctx, `
		SELECT id, task_id, start_at, end_at, note, created_at
		FROM entries WHERE id = $1`, id).
		Scan(&e.ID, &e.TaskID, &e.Start, &e.End, &e.Note, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TimeEntry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (s *PostgresStore) DeleteEntry(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindEntriesInRange(ctx context.Context, start, end time.Time) ([]models.TimeEntry, error) {
	return s.queryEntries(ctx, `
		SELECT id, task_id, start_at, end_at, note, created_at
		FROM entries WHERE start_at < $1 AND end_at > $2 ORDER BY start_at, id`, end, start)
}

func (s *PostgresStore) ListEntriesByTask(ctx context.Context, taskID string) ([]models.TimeEntry, error) {
	return s.queryEntries(ctx, `
		SELECT id, task_id, start_at, end_at, note, created_at
		FROM entries WHERE task_id = $1 ORDER BY start_at, id`, taskID)
}

func (s *PostgresStore) queryEntries(ctx context.Context, query string, args ...any) ([]models.TimeEntry, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		var e models.TimeEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Start, &e.End, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanPgTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	var pillar, status string
	err := row.Scan(&t.ID, &t.Title, &pillar, &t.GoalID, &t.EstimateMinutes, &t.DueBy, &status, &t.CreatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if t.Pillar, err = models.ParsePillar(pillar); err != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.Status = models.TaskStatus(status)
	return t, nil
}
