package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func writeJSON(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	return writeConfig(t, dir, "config.json", data)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvOpenAIKey, EnvGeminiKey, EnvWhatsAppAccessToken, EnvWhatsAppVerifyToken} {
		t.Setenv(k, "")
	}
}

// ─── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_NonExistent(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Assistant.Model != def.Assistant.Model {
		t.Errorf("expected default model %q, got %q", def.Assistant.Model, cfg.Assistant.Model)
	}
	if cfg.Channels.WhatsAppCloud.CountryCode != "91" {
		t.Errorf("expected default country code 91, got %q", cfg.Channels.WhatsAppCloud.CountryCode)
	}
}

func TestLoad_ValidJSON_MergesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeJSON(t, t.TempDir(), map[string]any{
		"assistant": map[string]any{
			"model":     "gemini/gemini-2.0-flash",
			"maxTokens": 1024,
		},
		"store": map[string]any{"driver": "postgres", "dsn": "postgres://localhost/spendit"},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assistant.Model != "gemini/gemini-2.0-flash" {
		t.Errorf("model = %q", cfg.Assistant.Model)
	}
	if cfg.Assistant.MaxTokens != 1024 {
		t.Errorf("maxTokens = %d, want 1024", cfg.Assistant.MaxTokens)
	}
	if cfg.Assistant.ConfidenceThreshold != 0.6 {
		t.Errorf("untouched threshold should keep default, got %v", cfg.Assistant.ConfidenceThreshold)
	}
	if cfg.StoreDSN() != "postgres://localhost/spendit" {
		t.Errorf("dsn = %q", cfg.StoreDSN())
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	yml := []byte(`
assistant:
  model: openai/gpt-4o
  timezone: Asia/Kolkata
channels:
  whatsappCloud:
    enabled: true
    phoneNumberId: "12345"
reminders:
  enabled: true
  cron: "30 7 * * *"
`)
	path := writeConfig(t, t.TempDir(), "config.yaml", yml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assistant.Model != "openai/gpt-4o" {
		t.Errorf("model = %q", cfg.Assistant.Model)
	}
	if !cfg.Channels.WhatsAppCloud.Enabled || cfg.Channels.WhatsAppCloud.PhoneNumberID != "12345" {
		t.Errorf("whatsappCloud = %+v", cfg.Channels.WhatsAppCloud)
	}
	if cfg.Channels.WhatsAppCloud.WebhookPath != "/api/whatsapp" {
		t.Errorf("webhook path should keep default, got %q", cfg.Channels.WhatsAppCloud.WebhookPath)
	}
	if cfg.Reminders.Cron != "30 7 * * *" {
		t.Errorf("cron = %q", cfg.Reminders.Cron)
	}
	loc, err := cfg.ReminderLocation()
	if err != nil {
		t.Fatalf("reminder location: %v", err)
	}
	if loc.String() != "Asia/Kolkata" {
		t.Errorf("reminder location should fall back to assistant zone, got %s", loc)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), "config.json", []byte("{not valid json"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for invalid JSON (falls back to default), got: %v", err)
	}
	if cfg.Assistant.Model != DefaultConfig().Assistant.Model {
		t.Errorf("expected default model, got %q", cfg.Assistant.Model)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenAIKey, "sk-env")
	t.Setenv(EnvWhatsAppAccessToken, "wa-token")
	t.Setenv(EnvWhatsAppVerifyToken, "verify-me")
	path := writeJSON(t, t.TempDir(), map[string]any{
		"providers": map[string]any{"openai": map[string]any{"apiKey": "sk-file"}},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.OpenAI.APIKey != "sk-env" {
		t.Errorf("env should override file key, got %q", cfg.Providers.OpenAI.APIKey)
	}
	if cfg.Channels.WhatsAppCloud.AccessToken != "wa-token" || cfg.Channels.WhatsAppCloud.VerifyToken != "verify-me" {
		t.Errorf("whatsapp tokens not applied: %+v", cfg.Channels.WhatsAppCloud)
	}
	if cfg.Providers.Gemini.APIKey != "" {
		t.Errorf("empty env must not override, got %q", cfg.Providers.Gemini.APIKey)
	}
}

// ─── Save ─────────────────────────────────────────────────────────────────────

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	for _, name := range []string{"config.json", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := DefaultConfig()
			cfg.Assistant.Model = "groq/llama-3.1-8b-instant"
			cfg.Gateway.Port = 9090

			if err := Save(&cfg, path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			if info.Mode().Perm() != 0o600 {
				t.Errorf("perm = %o, want 600", info.Mode().Perm())
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Assistant.Model != cfg.Assistant.Model || got.Gateway.Port != 9090 {
				t.Errorf("round trip mismatch: %+v", got.Assistant)
			}
		})
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func TestLLMTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLMTimeout() != 30*time.Second {
		t.Errorf("default timeout = %v", cfg.LLMTimeout())
	}
	cfg.Assistant.LLMTimeoutSeconds = 0
	if cfg.LLMTimeout() != 0 {
		t.Errorf("zero seconds should disable the timeout, got %v", cfg.LLMTimeout())
	}
}

func TestLocation_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Assistant.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestStoreDSN_DefaultsIntoDataDir(t *testing.T) {
	cfg := DefaultConfig()
	if got, want := cfg.StoreDSN(), filepath.Join(DataDir(), "spendit.db"); got != want {
		t.Errorf("StoreDSN = %q, want %q", got, want)
	}
	cfg.Store.Driver = "neo4j"
	if cfg.StoreDSN() != "" {
		t.Errorf("neo4j should have no DSN, got %q", cfg.StoreDSN())
	}
}
