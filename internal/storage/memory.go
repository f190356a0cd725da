package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pillarlog/internal/models"
)

// MemoryStore is an in-memory Provider. It keeps secondary indexes (tasks by
// goal and pillar, entries by task, entries ordered by start) in the same
// critical section as the primary maps, so readers never observe one without
// the other.
type MemoryStore struct {
	mu      sync.RWMutex
	goals   map[string]models.Goal
	tasks   map[string]models.Task
	entries map[string]models.TimeEntry

	tasksByGoal   map[string]map[string]struct{}
	tasksByPillar map[models.Pillar]map[string]struct{}
	entriesByTask map[string]map[string]struct{}

	// entry ids ordered by (start asc, id asc) for range scans
	entryOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		goals:         make(map[string]models.Goal),
		tasks:         make(map[string]models.Task),
		entries:       make(map[string]models.TimeEntry),
		tasksByGoal:   make(map[string]map[string]struct{}),
		tasksByPillar: make(map[models.Pillar]map[string]struct{}),
		entriesByTask: make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Init(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) PutGoal(ctx context.Context, g models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.ID] = g
	return nil
}

func (s *MemoryStore) GetGoal(ctx context.Context, id string) (models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return models.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return g, nil
}

func (s *MemoryStore) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	delete(s.goals, id)
	return nil
}

func (s *MemoryStore) ListGoals(ctx context.Context) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals := make([]models.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		goals = append(goals, g)
	}
	sort.Slice(goals, func(i, j int) bool {
		if !goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].CreatedAt.Before(goals[j].CreatedAt)
		}
		return goals[i].ID < goals[j].ID
	})
	return goals, nil
}

func (s *MemoryStore) PutTask(ctx context.Context, t models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.tasks[t.ID]; ok {
		s.unindexTask(old)
	}
	s.tasks[t.ID] = t
	s.indexTask(t)
	return nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	s.unindexTask(t)
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sortTasks(tasks)
	return tasks, nil
}

func (s *MemoryStore) ListTasksByGoal(ctx context.Context, goalID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tasks []models.Task
	for id := range s.tasksByGoal[goalID] {
		tasks = append(tasks, s.tasks[id])
	}
	sortTasks(tasks)
	return tasks, nil
}

func (s *MemoryStore) ListTasksByPillar(ctx context.Context, p models.Pillar) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tasks []models.Task
	for id := range s.tasksByPillar[p] {
		tasks = append(tasks, s.tasks[id])
	}
	sortTasks(tasks)
	return tasks, nil
}

func (s *MemoryStore) PutEntry(ctx context.Context, e models.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[e.ID]; ok {
		s.unindexEntry(old)
	}
	s.entries[e.ID] = e
	s.indexEntry(e)
	return nil
}

func (s *MemoryStore) GetEntry(ctx context.Context, id string) (models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return models.TimeEntry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (s *MemoryStore) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	s.unindexEntry(e)
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) FindEntriesInRange(ctx context.Context, start, end time.Time) ([]models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// entryOrder is sorted by start, so everything at or past the range end
	// can be pruned with a binary search.
	limit := sort.Search(len(s.entryOrder), func(i int) bool {
		return !s.entries[s.entryOrder[i]].Start.Before(end)
	})

	var found []models.TimeEntry
	for _, id := range s.entryOrder[:limit] {
		e := s.entries[id]
		if e.End.After(start) {
			found = append(found, e)
		}
	}
	return found, nil
}

func (s *MemoryStore) ListEntriesByTask(ctx context.Context, taskID string) ([]models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []models.TimeEntry
	for id := range s.entriesByTask[taskID] {
		entries = append(entries, s.entries[id])
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Start.Equal(entries[j].Start) {
			return entries[i].Start.Before(entries[j].Start)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *MemoryStore) indexTask(t models.Task) {
	if t.GoalID != "" {
		if s.tasksByGoal[t.GoalID] == nil {
			s.tasksByGoal[t.GoalID] = make(map[string]struct{})
		}
		s.tasksByGoal[t.GoalID][t.ID] = struct{}{}
	}
	if s.tasksByPillar[t.Pillar] == nil {
		s.tasksByPillar[t.Pillar] = make(map[string]struct{})
	}
	s.tasksByPillar[t.Pillar][t.ID] = struct{}{}
}

func (s *MemoryStore) unindexTask(t models.Task) {
	if t.GoalID != "" {
		delete(s.tasksByGoal[t.GoalID], t.ID)
	}
	delete(s.tasksByPillar[t.Pillar], t.ID)
}

func (s *MemoryStore) indexEntry(e models.TimeEntry) {
	if s.entriesByTask[e.TaskID] == nil {
		s.entriesByTask[e.TaskID] = make(map[string]struct{})
	}
	s.entriesByTask[e.TaskID][e.ID] = struct{}{}

	pos := sort.Search(len(s.entryOrder), func(i int) bool {
		other := s.entries[s.entryOrder[i]]
		if !other.Start.Equal(e.Start) {
			return other.Start.After(e.Start)
		}
		return other.ID > e.ID
	})
	s.entryOrder = append(s.entryOrder, "")
	copy(s.entryOrder[pos+1:], s.entryOrder[pos:])
	s.entryOrder[pos] = e.ID
}

func (s *MemoryStore) unindexEntry(e models.TimeEntry) {
	delete(s.entriesByTask[e.TaskID], e.ID)
	for i, id := range s.entryOrder {
		if id == e.ID {
			s.entryOrder = append(s.entryOrder[:i], s.entryOrder[i+1:]...)
			break
		}
	}
}

func sortTasks(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
