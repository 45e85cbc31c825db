package assistant

// AssistantConfig tunes the classifier, the fallback responder and the
// dispatcher's confidence gate.
type AssistantConfig struct {
	Model               string  `json:"model" yaml:"model"`
	MaxTokens           int     `json:"maxTokens" yaml:"maxTokens"`
	Temperature         float64 `json:"temperature" yaml:"temperature"`
	ConfidenceThreshold float64 `json:"confidenceThreshold" yaml:"confidenceThreshold"`
	LLMTimeoutSeconds   int     `json:"llmTimeoutSeconds" yaml:"llmTimeoutSeconds"`
	LLMRetries          int     `json:"llmRetries" yaml:"llmRetries"`
	Timezone            string  `json:"timezone" yaml:"timezone"` // IANA name; "" means the host zone
}

func DefaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		Model:               "openai/gpt-4o-mini",
		MaxTokens:           512,
		Temperature:         0.2,
		ConfidenceThreshold: 0.6,
		LLMTimeoutSeconds:   30,
	}
}
