package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/tasks"
)

type fakeDigester struct {
	counts map[string]int
	fail   map[string]bool
}

func (f *fakeDigester) TodaysTasks(_ context.Context, owner string) (string, int, error) {
	if f.fail[owner] {
		return "", 0, errors.New("store down")
	}
	n := f.counts[owner]
	return "📅 Today's Tasks for " + owner, n, nil
}

func seedOwners(t *testing.T, keys ...string) *tasks.MemStore {
	t.Helper()
	s := tasks.NewMemStore()
	for _, k := range keys {
		if _, err := s.AddOwner(context.Background(), k, ""); err != nil {
			t.Fatalf("AddOwner(%s): %v", k, err)
		}
	}
	return s
}

func drainOutbound(b *bus.MessageBus) []bus.OutboundMessage {
	var out []bus.OutboundMessage
	for {
		select {
		case m := <-b.OutboundChan():
			out = append(out, m)
		default:
			return out
		}
	}
}

// ─── NewService ───────────────────────────────────────────────────────────────

func TestNewService_InvalidSpec(t *testing.T) {
	_, err := NewService(tasks.NewMemStore(), &fakeDigester{}, bus.NewMessageBus(1), Options{Spec: "every morning"})
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

// ─── RunNow ───────────────────────────────────────────────────────────────────

func TestRunNow_SkipsOwnersWithNothingDue(t *testing.T) {
	store := seedOwners(t, "911111111111", "912222222222", "913333333333")
	dig := &fakeDigester{counts: map[string]int{"911111111111": 2, "913333333333": 1}}
	mb := bus.NewMessageBus(8)

	svc, err := NewService(store, dig, mb, Options{Spec: "0 8 * * *"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	sent, err := svc.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}

	msgs := drainOutbound(mb)
	var to []string
	for _, m := range msgs {
		if m.Channel() != bus.ChannelWhatsAppCloud {
			t.Errorf("channel = %q, want default whatsapp_cloud", m.Channel())
		}
		to = append(to, m.ChatId())
	}
	sort.Strings(to)
	if len(to) != 2 || to[0] != "911111111111" || to[1] != "913333333333" {
		t.Errorf("recipients = %v", to)
	}
}

func TestRunNow_ContinuesPastFailures(t *testing.T) {
	store := seedOwners(t, "a", "b")
	dig := &fakeDigester{
		counts: map[string]int{"a": 1, "b": 1},
		fail:   map[string]bool{"a": true},
	}
	mb := bus.NewMessageBus(8)

	svc, err := NewService(store, dig, mb, Options{Spec: "0 8 * * *", Channel: bus.ChannelTelegram})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	sent, err := svc.RunNow(context.Background())
	if err == nil {
		t.Error("expected the failing owner's error to be reported")
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	msgs := drainOutbound(mb)
	if len(msgs) != 1 || msgs[0].ChatId() != "b" || msgs[0].Channel() != bus.ChannelTelegram {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func TestRunNow_NoOwners(t *testing.T) {
	svc, err := NewService(tasks.NewMemStore(), &fakeDigester{}, bus.NewMessageBus(1), Options{Spec: "@daily"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	sent, err := svc.RunNow(context.Background())
	if err != nil || sent != 0 {
		t.Errorf("RunNow = %d, %v; want 0, nil", sent, err)
	}
}

type recordingSender struct {
	mu   sync.Mutex
	sent []bus.OutboundMessage
	fail bool
}

func (r *recordingSender) Send(_ context.Context, msg bus.OutboundMessage) error {
	if r.fail {
		return errors.New("graph api 401")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// ─── DeliverNow ───────────────────────────────────────────────────────────────

func TestDeliverNow_SendsSynchronously(t *testing.T) {
	store := seedOwners(t, "911111111111", "912222222222")
	dig := &fakeDigester{counts: map[string]int{"911111111111": 1, "912222222222": 3}}
	mb := bus.NewMessageBus(8)
	svc, err := NewService(store, dig, mb, Options{Spec: "0 8 * * *"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	rec := &recordingSender{}
	sent, err := svc.DeliverNow(context.Background(), rec)
	if err != nil {
		t.Fatalf("DeliverNow: %v", err)
	}
	if sent != 2 || len(rec.sent) != 2 {
		t.Errorf("sent = %d, recorded = %d; want 2", sent, len(rec.sent))
	}
	if n := len(drainOutbound(mb)); n != 0 {
		t.Errorf("DeliverNow must bypass the bus, found %d queued", n)
	}
}

func TestDeliverNow_SendFailure(t *testing.T) {
	store := seedOwners(t, "a")
	svc, err := NewService(store, &fakeDigester{counts: map[string]int{"a": 1}}, bus.NewMessageBus(1), Options{Spec: "0 8 * * *"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	sent, err := svc.DeliverNow(context.Background(), &recordingSender{fail: true})
	if err == nil || sent != 0 {
		t.Errorf("DeliverNow = %d, %v; want 0 and an error", sent, err)
	}
}
