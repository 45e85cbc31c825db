package dependency

import (
	"context"
	"strings"
	"testing"

	"github.com/WebNaresh/expense-management/internal/config"
)

func memoryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = "memory"
	return &cfg
}

func TestContainer_StoreWithoutLLMKey(t *testing.T) {
	c, err := New(memoryConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(context.Background())

	store, err := c.Store()
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := store.AddOwner(context.Background(), "919876543210", "Asha"); err != nil {
		t.Fatalf("AddOwner: %v", err)
	}

	again, err := c.Store()
	if err != nil {
		t.Fatalf("Store (second): %v", err)
	}
	owners, _ := again.ListOwners(context.Background())
	if len(owners) != 1 {
		t.Errorf("expected the same store instance, got %d owners", len(owners))
	}
}

func TestContainer_DispatcherNeedsKey(t *testing.T) {
	c, err := New(memoryConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Dispatcher()
	if err == nil || !strings.Contains(err.Error(), "no API key") {
		t.Errorf("expected missing key error, got %v", err)
	}
}

func TestContainer_FullGraph(t *testing.T) {
	cfg := memoryConfig()
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.Assistant.Timezone = "UTC"
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(context.Background())

	if _, err := c.Loop(); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if _, err := c.Reminder(); err != nil {
		t.Fatalf("Reminder: %v", err)
	}
	if _, err := c.Channels(); err != nil {
		t.Fatalf("Channels: %v", err)
	}
	s, err := c.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.Location.String() != "UTC" || s.Model != cfg.Assistant.Model {
		t.Errorf("settings not taken from config: %+v", s)
	}
}

func TestContainer_InvalidReminderSpec(t *testing.T) {
	cfg := memoryConfig()
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.Reminders.Cron = "whenever"
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Reminder(); err == nil {
		t.Error("expected invalid cron expression error")
	}
}

func TestContainer_SettingsKeepZeroThreshold(t *testing.T) {
	cfg := memoryConfig()
	cfg.Assistant.ConfidenceThreshold = 0
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(context.Background())

	s, err := c.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.ConfidenceThreshold != 0 {
		t.Errorf("threshold = %v, want 0", s.ConfidenceThreshold)
	}
}
