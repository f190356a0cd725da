package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pillarlog/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a Provider backed by an embedded SQLite database.
// Timestamps are persisted as Unix seconds, so instants round-trip exactly
// but wall-clock locations normalize to UTC; the facade re-applies the
// caller's location when building grid views.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS goals (
	id             TEXT PRIMARY KEY,
	pillar         TEXT NOT NULL,
	title          TEXT NOT NULL,
	period_start   INTEGER NOT NULL,
	period_end     INTEGER NOT NULL,
	target_minutes INTEGER NOT NULL DEFAULT 0,
	target_done    INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	pillar           TEXT NOT NULL,
	goal_id          TEXT NOT NULL DEFAULT '',
	estimate_minutes INTEGER NOT NULL DEFAULT 0,
	due_by           INTEGER,
	status           TEXT NOT NULL,
	created_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_goal ON tasks(goal_id) WHERE goal_id != '';
CREATE INDEX IF NOT EXISTS idx_tasks_pillar ON tasks(pillar);
CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL,
	start_at   INTEGER NOT NULL,
	end_at     INTEGER NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_range ON entries(start_at, end_at);
CREATE INDEX IF NOT EXISTS idx_entries_task ON entries(task_id);
`

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) PutGoal(ctx context.Context, g models.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO goals (id, pillar, title, period_start, period_end, target_minutes, target_done, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Pillar.String(), g.Title, g.PeriodStart.Unix(), g.PeriodEnd.Unix(),
		g.TargetMinutes, boolToInt(g.TargetDone), g.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) GetGoal(ctx context.Context, id string) (models.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, pillar, title, period_start, period_end, target_minutes, target_done, created_at
		FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return g, err
}

func (s *SQLiteStore) DeleteGoal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "goal", id)
}

func (s *SQLiteStore) ListGoals(ctx context.Context) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pillar, title, period_start, period_end, target_minutes, target_done, created_at
		FROM goals ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *SQLiteStore) PutTask(ctx context.Context, t models.Task) error {
	var dueBy sql.NullInt64
	if t.DueBy != nil {
		dueBy = sql.NullInt64{Int64: t.DueBy.Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tasks (id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Pillar.String(), t.GoalID, t.EstimateMinutes, dueBy, string(t.Status), t.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) GetTask(ctx context.Context, id string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "task", id)
}

func (s *SQLiteStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at
		FROM tasks ORDER BY created_at, id`)
}

func (s *SQLiteStore) ListTasksByGoal(ctx context.Context, goalID string) ([]models.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at
		FROM tasks WHERE goal_id = ? ORDER BY created_at, id`, goalID)
}

func (s *SQLiteStore) ListTasksByPillar(ctx context.Context, p models.Pillar) ([]models.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, pillar, goal_id, estimate_minutes, due_by, status, created_at
		FROM tasks WHERE pillar = ? ORDER BY created_at, id`, p.String())
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) PutEntry(ctx context.Context, e models.TimeEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries (id, task_id, start_at, end_at, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.TaskID, e.Start.Unix(), e.End.Unix(), e.Note, e.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (models.TimeEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, start_at, end_at, note, created_at
		FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimeEntry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "entry", id)
}

func (s *SQLiteStore) FindEntriesInRange(ctx context.Context, start, end time.Time) ([]models.TimeEntry, error) {
	return s.queryEntries(ctx, `
		SELECT id, task_id, start_at, end_at, note, created_at
		FROM entries WHERE start_at < ? AND end_at > ? ORDER BY start_at, id`,
		end.Unix(), start.Unix())
}

func (s *SQLiteStore) ListEntriesByTask(ctx context.Context, taskID string) ([]models.TimeEntry, error) {
	return s.queryEntries(ctx, `
		SELECT id, task_id, start_at, end_at, note, created_at
		FROM entries WHERE task_id = ? ORDER BY start_at, id`, taskID)
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...any) ([]models.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (models.Goal, error) {
	var g models.Goal
	var pillar string
	var periodStart, periodEnd, createdAt int64
	var targetDone int
	err := row.Scan(&g.ID, &pillar, &g.Title, &periodStart, &periodEnd, &g.TargetMinutes, &targetDone, &createdAt)
	if err != nil {
		return models.Goal{}, err
	}
	g.Pillar, err = models.ParsePillar(pillar)
	if err != nil {
		return models.Goal{}, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	g.PeriodStart = time.Unix(periodStart, 0).UTC()
	g.PeriodEnd = time.Unix(periodEnd, 0).UTC()
	g.TargetDone = targetDone != 0
	g.CreatedAt = time.Unix(createdAt, 0).UTC()
	return g, nil
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var pillar, status string
	var dueBy sql.NullInt64
	var createdAt int64
	err := row.Scan(&t.ID, &t.Title, &pillar, &t.GoalID, &t.EstimateMinutes, &dueBy, &status, &createdAt)
	if err != nil {
		return models.Task{}, err
	}
	t.Pillar, err = models.ParsePillar(pillar)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.Status = models.TaskStatus(status)
	if dueBy.Valid {
		due := time.Unix(dueBy.Int64, 0).UTC()
		t.DueBy = &due
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return t, nil
}

func scanEntry(row rowScanner) (models.TimeEntry, error) {
	var e models.TimeEntry
	var startAt, endAt, createdAt int64
	err := row.Scan(&e.ID, &e.TaskID, &startAt, &endAt, &e.Note, &createdAt)
	if err != nil {
		return models.TimeEntry{}, err
	}
	e.Start = time.Unix(startAt, 0).UTC()
	e.End = time.Unix(endAt, 0).UTC()
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return e, nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
