package provider

const (
	ProviderCustom     = "custom"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderDeepSeek   = "deepseek"
	ProviderGroq       = "groq"
	ProviderVLLM       = "vllm"
	ProviderGemini     = "gemini"
)

// ProviderConfig holds credentials for one LLM provider.
type ProviderConfig struct {
	APIKey       string            `json:"apiKey" yaml:"apiKey"`
	APIBase      string            `json:"apiBase,omitempty" yaml:"apiBase,omitempty"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty" yaml:"extraHeaders,omitempty"`
}

// ProvidersConfig holds credentials for all supported LLM providers.
type ProvidersConfig struct {
	Custom     ProviderConfig `json:"custom" yaml:"custom"`
	Anthropic  ProviderConfig `json:"anthropic" yaml:"anthropic"`
	OpenAI     ProviderConfig `json:"openai" yaml:"openai"`
	OpenRouter ProviderConfig `json:"openrouter" yaml:"openrouter"`
	DeepSeek   ProviderConfig `json:"deepseek" yaml:"deepseek"`
	Groq       ProviderConfig `json:"groq" yaml:"groq"`
	VLLM       ProviderConfig `json:"vllm" yaml:"vllm"`
	Gemini     ProviderConfig `json:"gemini" yaml:"gemini"`
}

func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{}
}

// ByName returns a pointer to the ProviderConfig field matching the given
// registry name. Returns nil if the name is unknown.
func (p *ProvidersConfig) ByName(name string) *ProviderConfig {
	switch name {
	case ProviderCustom:
		return &p.Custom
	case ProviderAnthropic:
		return &p.Anthropic
	case ProviderOpenAI:
		return &p.OpenAI
	case ProviderOpenRouter:
		return &p.OpenRouter
	case ProviderDeepSeek:
		return &p.DeepSeek
	case ProviderGroq:
		return &p.Groq
	case ProviderVLLM:
		return &p.VLLM
	case ProviderGemini:
		return &p.Gemini
	}
	return nil
}
