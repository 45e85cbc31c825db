package intent

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/WebNaresh/expense-management/internal/tasks"
)

var testNow = time.Date(2026, 3, 3, 15, 30, 0, 0, time.UTC)

func newTestDispatcher(c Classification, store *countingStore) (*Dispatcher, *fakeResponder) {
	fb := &fakeResponder{reply: "fallback reply"}
	settings := DefaultSettings()
	settings.Location = time.UTC
	d := NewDispatcher(&fakeClassifier{result: c}, fb, store, settings)
	d.now = fixedClock(testNow)
	return d, fb
}

// ─── Confidence gating ─────────────────────────────────────────────────────

func TestHandleMessage_LowConfidenceFallsBack(t *testing.T) {
	for _, in := range []Intent{IntentCreateTask, IntentViewTasks, IntentViewTodaysTasks, IntentCompleteTask, IntentOther} {
		t.Run(string(in), func(t *testing.T) {
			store := newCountingStore()
			store.seed(testNow, false, "Call mom")
			c := Classification{Intent: in, Details: Details{TaskName: "Call mom"}, Confidence: 0.59}
			d, fb := newTestDispatcher(c, store)

			reply := d.HandleMessage(context.Background(), "hmm", testOwner)
			if reply != "fallback reply" {
				t.Errorf("reply = %q, want fallback", reply)
			}
			if fb.calls != 1 {
				t.Errorf("fallback calls = %d, want 1", fb.calls)
			}
			if store.mutations() != 0 {
				t.Errorf("expected no mutations, got %d", store.mutations())
			}
		})
	}
}

func TestHandleMessage_ThresholdIsInclusive(t *testing.T) {
	store := newCountingStore()
	d, fb := newTestDispatcher(Classification{Intent: IntentViewTasks, Confidence: 0.6}, store)
	if reply := d.HandleMessage(context.Background(), "tasks", testOwner); reply != replyNoTasks {
		t.Errorf("reply = %q", reply)
	}
	if fb.calls != 0 {
		t.Error("confidence equal to the threshold should not fall back")
	}
}

func TestHandleMessage_OtherFallsBack(t *testing.T) {
	d, fb := newTestDispatcher(Classification{Intent: IntentOther, Confidence: 0.99}, newCountingStore())
	d.HandleMessage(context.Background(), "hello", testOwner)
	if fb.calls != 1 {
		t.Errorf("fallback calls = %d, want 1", fb.calls)
	}
}

func TestHandleMessage_EmptyFallbackUsesDefault(t *testing.T) {
	d, fb := newTestDispatcher(Classification{Intent: IntentOther, Confidence: 1}, newCountingStore())
	fb.reply = ""
	if reply := d.HandleMessage(context.Background(), "hello", testOwner); reply != DefaultFallbackReply {
		t.Errorf("reply = %q", reply)
	}
}

// ─── CREATE_TASK ───────────────────────────────────────────────────────────

func TestCreateTask_DefaultsDueToNow(t *testing.T) {
	store := newCountingStore()
	d, _ := newTestDispatcher(Classification{
		Intent:     IntentCreateTask,
		Details:    Details{TaskName: "buy milk"},
		Confidence: 0.9,
	}, store)

	reply := d.HandleMessage(context.Background(), "add buy milk", testOwner)
	if !strings.Contains(reply, "buy milk") {
		t.Errorf("reply %q does not mention the task", reply)
	}

	list, _ := store.ListOpenTasks(context.Background(), testOwner)
	if len(list) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list))
	}
	if diff := list[0].DueAt.Sub(testNow); diff < -time.Second || diff > time.Second {
		t.Errorf("due = %v, want ~%v", list[0].DueAt, testNow)
	}
	if !strings.Contains(list[0].Description, `"add buy milk"`) {
		t.Errorf("description = %q", list[0].Description)
	}
}

func TestCreateTask_ParsedDate(t *testing.T) {
	store := newCountingStore()
	d, _ := newTestDispatcher(Classification{
		Intent:     IntentCreateTask,
		Details:    Details{TaskName: "Call Vivek", Date: "2026-03-04T10:00:00Z"},
		Confidence: 0.95,
	}, store)

	reply := d.HandleMessage(context.Background(), "add task to call Vivek at 10am tomorrow", testOwner)
	want := `✅ Task created: "Call Vivek" scheduled for Wed, Mar 4, 10:00 AM`
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
}

func TestCreateTask_InvalidDateFallsBackToNow(t *testing.T) {
	store := newCountingStore()
	d, _ := newTestDispatcher(Classification{
		Intent:     IntentCreateTask,
		Details:    Details{TaskName: "pay rent", Date: "someday soonish"},
		Confidence: 0.9,
	}, store)

	d.HandleMessage(context.Background(), "pay rent someday", testOwner)
	list, _ := store.ListOpenTasks(context.Background(), testOwner)
	if len(list) != 1 || !list[0].DueAt.Equal(testNow) {
		t.Errorf("expected task due now, got %+v", list)
	}
}

func TestCreateTask_PartialDateFallsBackToNow(t *testing.T) {
	store := newCountingStore()
	d, _ := newTestDispatcher(Classification{
		Intent:     IntentCreateTask,
		Details:    Details{TaskName: "dentist", Date: "oct 7"},
		Confidence: 0.9,
	}, store)

	d.HandleMessage(context.Background(), "dentist oct 7", testOwner)
	list, _ := store.ListOpenTasks(context.Background(), testOwner)
	if len(list) != 1 || !list[0].DueAt.Equal(testNow) {
		t.Errorf("expected task due now, got %+v", list)
	}
}

func TestCreateTask_MissingNameAsksForClarification(t *testing.T) {
	store := newCountingStore()
	d, _ := newTestDispatcher(Classification{Intent: IntentCreateTask, Confidence: 0.9}, store)

	if reply := d.HandleMessage(context.Background(), "add a task", testOwner); reply != replyNeedTaskName {
		t.Errorf("reply = %q", reply)
	}
	if store.mutations() != 0 {
		t.Errorf("expected no mutations, got %d", store.mutations())
	}
}

func TestCreateTask_UnknownOwnerIsGenericFailure(t *testing.T) {
	store := newCountingStore()
	d, _ := newTestDispatcher(Classification{
		Intent:     IntentCreateTask,
		Details:    Details{TaskName: "x"},
		Confidence: 0.9,
	}, store)

	if reply := d.HandleMessage(context.Background(), "add x", "stranger"); reply != replyGenericFailure {
		t.Errorf("reply = %q", reply)
	}
}

// ─── VIEW_TASKS ────────────────────────────────────────────────────────────

func TestViewTasks_Empty(t *testing.T) {
	d, _ := newTestDispatcher(Classification{Intent: IntentViewTasks, Confidence: 0.9}, newCountingStore())
	if reply := d.HandleMessage(context.Background(), "my tasks", testOwner); reply != replyNoTasks {
		t.Errorf("reply = %q", reply)
	}
}

func TestViewTasks_CapsCompleted(t *testing.T) {
	store := newCountingStore()
	store.seed(testNow, true, "done 1", "done 2", "done 3", "done 4", "done 5")
	d, _ := newTestDispatcher(Classification{Intent: IntentViewTasks, Confidence: 0.9}, store)

	reply := d.HandleMessage(context.Background(), "tell me my tasks", testOwner)
	if n := strings.Count(reply, "✓ "); n != 3 {
		t.Errorf("listed %d completed tasks, want 3:\n%s", n, reply)
	}
	if !strings.Contains(reply, "2 more") {
		t.Errorf("reply does not mention the remaining 2:\n%s", reply)
	}
	if strings.Contains(reply, "Pending Tasks") {
		t.Errorf("unexpected pending section:\n%s", reply)
	}
}

func TestViewTasks_PendingListedInFull(t *testing.T) {
	store := newCountingStore()
	store.seed(testNow, false, "a", "b", "c", "d", "e")
	store.seed(testNow, true, "old")
	d, _ := newTestDispatcher(Classification{Intent: IntentViewTasks, Confidence: 0.9}, store)

	reply := d.HandleMessage(context.Background(), "tasks", testOwner)
	for _, want := range []string{"1. a - Due:", "5. e - Due:", "Completed Tasks:\n✓ old"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
	if strings.Contains(reply, "more completed") {
		t.Errorf("unexpected remainder line:\n%s", reply)
	}
}

// ─── VIEW_TODAYS_TASKS ─────────────────────────────────────────────────────

func TestViewTodaysTasks_Empty(t *testing.T) {
	store := newCountingStore()
	store.seed(testNow.AddDate(0, 0, 1), false, "tomorrow")
	d, _ := newTestDispatcher(Classification{Intent: IntentViewTodaysTasks, Confidence: 0.9}, store)

	if reply := d.HandleMessage(context.Background(), "what's today", testOwner); reply != replyNoTasksToday {
		t.Errorf("reply = %q", reply)
	}
	if store.mutations() != 0 {
		t.Errorf("expected no mutations, got %d", store.mutations())
	}
}

func TestViewTodaysTasks_NoCap(t *testing.T) {
	store := newCountingStore()
	start, _ := DayBounds(testNow)
	store.seed(start, true, "c1", "c2", "c3", "c4", "c5")
	store.seed(start.Add(-time.Minute), false, "yesterday")
	d, _ := newTestDispatcher(Classification{Intent: IntentViewTodaysTasks, Confidence: 0.9}, store)

	reply := d.HandleMessage(context.Background(), "today", testOwner)
	if n := strings.Count(reply, "✓ "); n != 5 {
		t.Errorf("listed %d completed tasks, want 5:\n%s", n, reply)
	}
	if strings.Contains(reply, "yesterday") {
		t.Errorf("reply includes a task from another day:\n%s", reply)
	}
}

// ─── COMPLETE_TASK ─────────────────────────────────────────────────────────

func TestCompleteTask_NothingPending(t *testing.T) {
	store := newCountingStore()
	store.seed(testNow, true, "already done")
	d, _ := newTestDispatcher(Classification{Intent: IntentCompleteTask, Confidence: 0.9}, store)

	if reply := d.HandleMessage(context.Background(), "done", testOwner); reply != replyNothingPending {
		t.Errorf("reply = %q", reply)
	}
	if store.completes != 0 {
		t.Error("expected no completion")
	}
}

func TestCompleteTask_ResolvesPosition(t *testing.T) {
	store := newCountingStore()
	seeded := store.seed(testNow, false, "Call mom", "Buy milk", "Pay rent")
	d, _ := newTestDispatcher(Classification{
		Intent:     IntentCompleteTask,
		Details:    Details{TaskPosition: "the second one"},
		Confidence: 0.9,
	}, store)

	reply := d.HandleMessage(context.Background(), "mark the second one done", testOwner)
	if reply != `✅ Marked "Buy milk" as completed.` {
		t.Errorf("reply = %q", reply)
	}
	list, _ := store.ListOpenTasks(context.Background(), testOwner)
	for _, task := range list {
		if task.Completed != (task.ID == seeded[1].ID) {
			t.Errorf("task %q completed = %v", task.Name, task.Completed)
		}
	}
}

func TestCompleteTask_SkipsCompletedWhenIndexing(t *testing.T) {
	store := newCountingStore()
	store.seed(testNow.Add(-time.Hour), true, "old")
	store.seed(testNow, false, "Call mom", "Buy milk")
	d, _ := newTestDispatcher(Classification{
		Intent:     IntentCompleteTask,
		Details:    Details{TaskIndex: intPtr(1)},
		Confidence: 0.9,
	}, store)

	if reply := d.HandleMessage(context.Background(), "done with task 1", testOwner); !strings.Contains(reply, "Call mom") {
		t.Errorf("reply = %q", reply)
	}
}

func TestCompleteTask_UnresolvedListsPending(t *testing.T) {
	store := newCountingStore()
	store.seed(testNow, false, "Call mom", "Buy milk")
	d, _ := newTestDispatcher(Classification{
		Intent:     IntentCompleteTask,
		Details:    Details{TaskName: "dentist"},
		Confidence: 0.9,
	}, store)

	reply := d.HandleMessage(context.Background(), "done with the dentist thing", testOwner)
	for _, want := range []string{"1. Call mom", "2. Buy milk", "mark the first one done"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
	if store.completes != 0 {
		t.Error("expected no completion")
	}
}

func TestCompleteTask_StoreFailureIsGeneric(t *testing.T) {
	store := newCountingStore()
	store.seed(testNow, false, "Call mom")
	store.failWith = tasks.ErrPersistence
	d, _ := newTestDispatcher(Classification{Intent: IntentCompleteTask, Confidence: 0.9}, store)

	reply := d.HandleMessage(context.Background(), "done", testOwner)
	if reply != replyGenericFailure {
		t.Errorf("reply = %q", reply)
	}
	if strings.Contains(reply, "persistence") {
		t.Error("internal error leaked into reply")
	}
}

// ─── Failure absorption ────────────────────────────────────────────────────

func TestHandleMessage_RecoversFromPanic(t *testing.T) {
	store := newCountingStore()
	d := NewDispatcher(&fakeClassifier{panics: true}, &fakeResponder{}, store, DefaultSettings())
	if reply := d.HandleMessage(context.Background(), "boom", testOwner); reply != replyGenericFailure {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleMessage_MalformedClassifierOutput(t *testing.T) {
	store := newCountingStore()
	store.seed(testNow, false, "Call mom")
	provider := &fakeProvider{replies: []string{"sure! the intent is CREATE_TASK"}}
	settings := DefaultSettings()
	d := NewDispatcher(NewLLMClassifier(provider, settings), NewLLMResponder(provider, settings), store, settings)

	reply := d.HandleMessage(context.Background(), "add call mom", testOwner)
	if strings.TrimSpace(reply) == "" {
		t.Fatal("expected a non-empty reply")
	}
	if store.mutations() != 0 {
		t.Errorf("expected no mutations, got %d", store.mutations())
	}
}

func TestNewDispatcher_DefaultThreshold(t *testing.T) {
	d := NewDispatcher(&fakeClassifier{}, &fakeResponder{}, newCountingStore(), DefaultSettings())
	if d.threshold != DefaultConfidenceThreshold {
		t.Errorf("threshold = %v", d.threshold)
	}
}

func TestNewDispatcher_ZeroThresholdIsHonoured(t *testing.T) {
	settings := DefaultSettings()
	settings.ConfidenceThreshold = 0
	fb := &fakeResponder{reply: "fallback reply"}
	d := NewDispatcher(&fakeClassifier{result: Classification{Intent: IntentViewTasks}}, fb, newCountingStore(), settings)

	if d.threshold != 0 {
		t.Fatalf("threshold = %v, want 0", d.threshold)
	}
	if reply := d.HandleMessage(context.Background(), "tasks", testOwner); reply != replyNoTasks {
		t.Errorf("reply = %q", reply)
	}
	if fb.calls != 0 {
		t.Error("a zero threshold should never fall back for a known intent")
	}
}

func TestNewDispatcher_ThresholdClamped(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-1, 0},
		{2, 1},
		{math.NaN(), DefaultConfidenceThreshold},
	}
	for _, c := range cases {
		settings := DefaultSettings()
		settings.ConfidenceThreshold = c.in
		d := NewDispatcher(&fakeClassifier{}, &fakeResponder{}, newCountingStore(), settings)
		if d.threshold != c.want {
			t.Errorf("threshold(%v) = %v, want %v", c.in, d.threshold, c.want)
		}
	}
}
