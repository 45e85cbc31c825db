package providers

import "github.com/WebNaresh/expense-management/internal/schema"

// Params are the raw values needed to construct any schema.LLMProvider.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string
	ProviderName string // registry name, e.g. "openrouter", "anthropic"
}

// New creates the appropriate schema.LLMProvider for the given params.
//
//   - gemini without a custom api base → GeminiProvider (genai SDK)
//   - otherwise → OpenAIProvider (direct HTTP, handles all OpenAI-compat
//     providers including the Anthropic Messages API)
func New(p Params) schema.LLMProvider {
	if spec := FindByName(p.ProviderName); spec != nil && spec.Native && p.APIBase == "" {
		return NewGeminiProvider(p.APIKey, p.DefaultModel)
	}
	return NewOpenAIProvider(p.APIKey, p.APIBase, p.DefaultModel, p.ProviderName, p.ExtraHeaders)
}
