package intent

import (
	"context"
	"errors"
	"time"

	"github.com/WebNaresh/expense-management/internal/schema"
	"github.com/WebNaresh/expense-management/internal/tasks"
)

const testOwner = "919800000001"

type fakeClassifier struct {
	result Classification
	panics bool
}

func (f *fakeClassifier) Classify(context.Context, string) Classification {
	if f.panics {
		panic("boom")
	}
	return f.result
}

type fakeResponder struct {
	reply string
	calls int
}

func (f *fakeResponder) Respond(context.Context, string) string {
	f.calls++
	return f.reply
}

// countingStore records mutations and can be told to fail.
type countingStore struct {
	*tasks.MemStore
	creates   int
	completes int
	failWith  error
}

func newCountingStore() *countingStore {
	s := &countingStore{MemStore: tasks.NewMemStore()}
	_, _ = s.AddOwner(context.Background(), testOwner, "Test")
	return s
}

func (s *countingStore) CreateTask(ctx context.Context, name, desc string, due time.Time, owner string) (tasks.Task, error) {
	s.creates++
	if s.failWith != nil {
		return tasks.Task{}, s.failWith
	}
	return s.MemStore.CreateTask(ctx, name, desc, due, owner)
}

func (s *countingStore) CompleteTask(ctx context.Context, id string) (tasks.Task, error) {
	s.completes++
	if s.failWith != nil {
		return tasks.Task{}, s.failWith
	}
	return s.MemStore.CompleteTask(ctx, id)
}

func (s *countingStore) ListOpenTasks(ctx context.Context, owner string) ([]tasks.Task, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.MemStore.ListOpenTasks(ctx, owner)
}

func (s *countingStore) mutations() int { return s.creates + s.completes }

// seed inserts tasks due one hour apart starting at base, optionally completed.
func (s *countingStore) seed(base time.Time, completed bool, names ...string) []tasks.Task {
	out := make([]tasks.Task, 0, len(names))
	for i, n := range names {
		t, err := s.MemStore.CreateTask(context.Background(), n, "", base.Add(time.Duration(i)*time.Hour), testOwner)
		if err != nil {
			panic(err)
		}
		if completed {
			t, _ = s.MemStore.CompleteTask(context.Background(), t.ID)
		}
		out = append(out, t)
	}
	return out
}

// fakeProvider returns canned replies in order; the last one repeats.
type fakeProvider struct {
	replies []string
	err     error
	calls   int
	opts    []schema.ChatOptions
	prompts []schema.Messages
}

func (f *fakeProvider) Chat(_ context.Context, msgs schema.Messages, opts schema.ChatOptions) (schema.LLMResponse, error) {
	f.calls++
	f.opts = append(f.opts, opts)
	f.prompts = append(f.prompts, msgs)
	if f.err != nil {
		return schema.LLMResponse{}, f.err
	}
	if len(f.replies) == 0 {
		return schema.LLMResponse{FinishReason: "stop"}, nil
	}
	i := f.calls - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	text := f.replies[i]
	return schema.LLMResponse{Content: &text, FinishReason: "stop"}, nil
}

func (f *fakeProvider) DefaultModel() string { return "fake" }

var errUpstream = errors.New("upstream unavailable")

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func intPtr(n int) *int { return &n }
