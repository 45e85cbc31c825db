package tasks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-process Backend. State is lost on exit.
type MemStore struct {
	mu     sync.RWMutex
	owners map[string]Owner
	tasks  map[string]Task
	seq    map[string]int // insertion order, used as a tiebreak on equal due times
	next   int
	now    func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		owners: make(map[string]Owner),
		tasks:  make(map[string]Task),
		seq:    make(map[string]int),
		now:    time.Now,
	}
}

func (s *MemStore) AddOwner(_ context.Context, key, name string) (Owner, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Owner{}, persistenceErr("add owner", errEmptyKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.owners[key]; ok {
		return o, nil
	}
	o := Owner{ID: uuid.NewString(), Key: key, Name: name, CreatedAt: s.now()}
	s.owners[key] = o
	return o, nil
}

func (s *MemStore) ListOwners(_ context.Context) ([]Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Owner, 0, len(s.owners))
	for _, o := range s.owners {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemStore) CreateTask(_ context.Context, name, description string, dueAt time.Time, ownerKey string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[ownerKey]; !ok {
		return Task{}, ErrUnknownOwner
	}
	t := Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		DueAt:       dueAt,
		OwnerKey:    ownerKey,
		CreatedAt:   s.now(),
	}
	s.tasks[t.ID] = t
	s.seq[t.ID] = s.next
	s.next++
	return t, nil
}

func (s *MemStore) ListOpenTasks(_ context.Context, ownerKey string) ([]Task, error) {
	return s.list(ownerKey, func(Task) bool { return true }), nil
}

func (s *MemStore) ListTasksInRange(_ context.Context, ownerKey string, start, end time.Time) ([]Task, error) {
	return s.list(ownerKey, func(t Task) bool {
		return !t.DueAt.Before(start) && !t.DueAt.After(end)
	}), nil
}

func (s *MemStore) CompleteTask(_ context.Context, taskID string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	t.Completed = true
	s.tasks[taskID] = t
	return t, nil
}

func (s *MemStore) Close(context.Context) error { return nil }

func (s *MemStore) list(ownerKey string, keep func(Task) bool) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, 0)
	for _, t := range s.tasks {
		if t.OwnerKey == ownerKey && keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].DueAt.Before(out[j].DueAt)
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out
}
