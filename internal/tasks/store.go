package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a task id does not exist.
	ErrNotFound = errors.New("tasks: not found")
	// ErrPersistence wraps every failure of the underlying storage.
	ErrPersistence = errors.New("tasks: persistence failure")
	// ErrUnknownOwner is returned by CreateTask when the owner key is not registered.
	ErrUnknownOwner = fmt.Errorf("%w: unknown owner", ErrPersistence)
)

// Store is the task persistence contract used by the dispatcher.
type Store interface {
	// CreateTask inserts a pending task owned by ownerKey.
	CreateTask(ctx context.Context, name, description string, dueAt time.Time, ownerKey string) (Task, error)
	// ListOpenTasks returns every task of the owner ordered by ascending due time.
	ListOpenTasks(ctx context.Context, ownerKey string) ([]Task, error)
	// ListTasksInRange is ListOpenTasks filtered to start <= DueAt <= end.
	ListTasksInRange(ctx context.Context, ownerKey string, start, end time.Time) ([]Task, error)
	// CompleteTask marks the task completed. Completing twice is not an error.
	CompleteTask(ctx context.Context, taskID string) (Task, error)
}

// OwnerStore manages the owner registry.
type OwnerStore interface {
	// AddOwner registers key; adding an existing key returns the stored owner.
	AddOwner(ctx context.Context, key, name string) (Owner, error)
	ListOwners(ctx context.Context) ([]Owner, error)
}

// Backend is a full storage implementation.
type Backend interface {
	Store
	OwnerStore
	Close(ctx context.Context) error
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

var errEmptyKey = errors.New("owner key is empty")
