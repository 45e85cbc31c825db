package config

import "testing"

func TestMatchProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.OpenAI.APIKey = "sk-openai"
	cfg.Providers.Gemini.APIKey = "gm-key"
	cfg.Providers.OpenRouter.APIKey = "sk-or-key"

	tests := []struct {
		model string
		want  string
	}{
		{"gemini/gemini-2.0-flash", "gemini"},
		{"gpt-4o-mini", "openai"},
		{"openai/gpt-4o", "openai"},
		{"claude-3-5-haiku", "openrouter"}, // no anthropic key: first configured wins
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := cfg.MatchProvider(tt.model).Name; got != tt.want {
				t.Errorf("MatchProvider(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestMatchProvider_NoKeys(t *testing.T) {
	cfg := DefaultConfig()
	if r := cfg.MatchProvider(""); r.Provider != nil || r.Name != "" {
		t.Errorf("expected empty match, got %+v", r)
	}
	if cfg.GetAPIKey("") != "" {
		t.Error("expected empty api key")
	}
}

func TestGetAPIBase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.OpenRouter.APIKey = "sk-or-key"
	if got := cfg.GetAPIBase("openrouter/openai/gpt-4o"); got != "https://openrouter.ai/api/v1" {
		t.Errorf("gateway default base = %q", got)
	}
	cfg.Providers.OpenRouter.APIBase = "http://proxy.local/v1"
	if got := cfg.GetAPIBase("openrouter/openai/gpt-4o"); got != "http://proxy.local/v1" {
		t.Errorf("configured base = %q", got)
	}
}
