package intent

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"time"

	"github.com/WebNaresh/expense-management/internal/shared/llmutils"
	"github.com/WebNaresh/expense-management/internal/tasks"
)

// Dispatcher routes a classified message to the task store and builds the
// reply. It keeps no state between messages.
type Dispatcher struct {
	classifier Classifier
	fallback   Responder
	store      tasks.Store
	threshold  float64
	loc        *time.Location
	now        func() time.Time
}

func NewDispatcher(classifier Classifier, fallback Responder, store tasks.Store, settings Settings) *Dispatcher {
	threshold := settings.ConfidenceThreshold
	if math.IsNaN(threshold) {
		threshold = DefaultConfidenceThreshold
	}
	threshold = math.Max(0, math.Min(1, threshold))
	return &Dispatcher{
		classifier: classifier,
		fallback:   fallback,
		store:      store,
		threshold:  threshold,
		loc:        settings.location(),
		now:        time.Now,
	}
}

// HandleMessage returns the reply for message sent by senderKey. It always
// returns a non-empty reply; failures are logged and never surfaced.
func (d *Dispatcher) HandleMessage(ctx context.Context, message, senderKey string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("intent: panic while handling message", "sender", senderKey, "panic", r, "stack", string(debug.Stack()))
			reply = replyGenericFailure
		}
	}()

	c := d.classifier.Classify(ctx, message)
	slog.Info("intent: classified message",
		"sender", senderKey,
		"intent", c.Intent,
		"confidence", c.Confidence,
		"content", llmutils.Truncate(message, 80),
	)

	if c.Confidence < d.threshold {
		return d.respond(ctx, message)
	}

	var err error
	switch c.Intent {
	case IntentCreateTask:
		reply, err = d.createTask(ctx, message, senderKey, c.Details)
	case IntentViewTasks:
		reply, err = d.viewTasks(ctx, senderKey)
	case IntentViewTodaysTasks:
		reply, _, err = d.TodaysTasks(ctx, senderKey)
	case IntentCompleteTask:
		reply, err = d.completeTask(ctx, senderKey, c.Details)
	default:
		return d.respond(ctx, message)
	}
	if err != nil {
		slog.Error("intent: dispatch failed", "intent", c.Intent, "sender", senderKey, "err", err)
		return replyGenericFailure
	}
	return reply
}

func (d *Dispatcher) respond(ctx context.Context, message string) string {
	return llmutils.StringOrDefault(d.fallback.Respond(ctx, message), DefaultFallbackReply)
}

func (d *Dispatcher) createTask(ctx context.Context, message, owner string, det Details) (string, error) {
	if det.TaskName == "" {
		return replyNeedTaskName, nil
	}
	due, ok := ParseDue(det.Date, d.loc)
	if !ok {
		due = d.now()
	}
	desc := fmt.Sprintf("Task created via WhatsApp message: %q", message)
	t, err := d.store.CreateTask(ctx, det.TaskName, desc, due, owner)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	slog.Info("intent: task created", "sender", owner, "task", t.ID)
	return createdReply(t, d.loc), nil
}

func (d *Dispatcher) viewTasks(ctx context.Context, owner string) (string, error) {
	list, err := d.store.ListOpenTasks(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	if len(list) == 0 {
		return replyNoTasks, nil
	}
	return formatTaskList("📋 Your Tasks:", list, completedCap, d.loc), nil
}

// TodaysTasks renders the owner's tasks due today and reports how many there
// are. The scheduled digest reuses it.
func (d *Dispatcher) TodaysTasks(ctx context.Context, owner string) (string, int, error) {
	start, end := DayBounds(d.now().In(d.loc))
	list, err := d.store.ListTasksInRange(ctx, owner, start, end)
	if err != nil {
		return "", 0, fmt.Errorf("list today's tasks: %w", err)
	}
	if len(list) == 0 {
		return replyNoTasksToday, 0, nil
	}
	return formatTaskList("📅 Today's Tasks:", list, 0, d.loc), len(list), nil
}

func (d *Dispatcher) completeTask(ctx context.Context, owner string, det Details) (string, error) {
	list, err := d.store.ListOpenTasks(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	pending := tasks.Pending(list)
	if len(pending) == 0 {
		return replyNothingPending, nil
	}

	target, ok := Resolve(det, pending)
	if !ok {
		return pendingPrompt(pending, d.loc), nil
	}

	done, err := d.store.CompleteTask(ctx, target.ID)
	if err != nil {
		return "", fmt.Errorf("complete task %s: %w", target.ID, err)
	}
	slog.Info("intent: task completed", "sender", owner, "task", done.ID)
	return completedReply(done), nil
}
