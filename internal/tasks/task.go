// Package tasks owns persisted task records and the owners they belong to.
package tasks

import "time"

// Task is a single to-do item owned by exactly one owner.
type Task struct {
	ID          string
	Name        string
	Description string
	DueAt       time.Time
	Completed   bool
	OwnerKey    string
	CreatedAt   time.Time
}

// Owner is a registered user; Key is the channel-native identity tasks are
// scoped by (a WhatsApp number, a Telegram user id, ...).
type Owner struct {
	ID        string
	Key       string
	Name      string
	CreatedAt time.Time
}

// Pending returns the tasks that are not completed, preserving order.
func Pending(list []Task) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Completed returns the completed tasks, preserving order.
func Completed(list []Task) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}
