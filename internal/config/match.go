package config

import (
	"strings"

	"github.com/WebNaresh/expense-management/internal/config/provider"
	"github.com/WebNaresh/expense-management/internal/providers"
)

// MatchResult is the resolved LLM provider config and registry name for a model.
type MatchResult struct {
	Provider *provider.ProviderConfig
	Name     string // e.g. "openrouter", "gemini"
}

// MatchProvider resolves which provider config and registry entry to use for model.
// If model is empty, assistant.model is used.
//
// Priority order:
//  1. Explicit provider prefix in the model string ("gemini/gemini-2.0-flash")
//  2. Keyword match in the model name (registry order)
//  3. Fallback: the first provider with a key, gateways first
func (c *Config) MatchProvider(model string) MatchResult {
	if model == "" {
		model = c.Assistant.Model
	}
	modelLower := strings.ToLower(model)
	modelNorm := strings.ReplaceAll(modelLower, "-", "_")
	modelPrefix, _, _ := strings.Cut(modelLower, "/")
	normalizedPrefix := strings.ReplaceAll(modelPrefix, "-", "_")

	kwMatches := func(kw string) bool {
		kw = strings.ToLower(kw)
		kwNorm := strings.ReplaceAll(kw, "-", "_")
		return strings.Contains(modelLower, kw) || strings.Contains(modelNorm, kwNorm)
	}

	if modelPrefix != "" {
		for _, spec := range providers.PROVIDERS {
			if normalizedPrefix != spec.Name {
				continue
			}
			if p := c.ProviderByName(spec.Name); p != nil && p.APIKey != "" {
				return MatchResult{Provider: p, Name: spec.Name}
			}
		}
	}

	for _, spec := range providers.PROVIDERS {
		p := c.ProviderByName(spec.Name)
		if p == nil || p.APIKey == "" {
			continue
		}
		for _, kw := range spec.Keywords {
			if kwMatches(kw) {
				return MatchResult{Provider: p, Name: spec.Name}
			}
		}
	}

	for _, spec := range providers.PROVIDERS {
		if p := c.ProviderByName(spec.Name); p != nil && p.APIKey != "" {
			return MatchResult{Provider: p, Name: spec.Name}
		}
	}

	return MatchResult{}
}

// GetAPIBase resolves the effective API base URL for model.
// Precedence: configured apiBase > registry default (gateways and local only).
func (c *Config) GetAPIBase(model string) string {
	result := c.MatchProvider(model)
	if result.Provider != nil && result.Provider.APIBase != "" {
		return result.Provider.APIBase
	}
	if spec := providers.FindByName(result.Name); spec != nil && (spec.IsGateway || spec.IsLocal) {
		return spec.DefaultAPIBase
	}
	return ""
}

// GetAPIKey returns the API key for model (or "").
func (c *Config) GetAPIKey(model string) string {
	if p := c.MatchProvider(model).Provider; p != nil {
		return p.APIKey
	}
	return ""
}
