package schema

import "context"

// ResponseFormat selects how the model is asked to shape its reply.
type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = "text"
	ResponseFormatJSON ResponseFormat = "json_object"
)

// ChatOptions configures a single LLM chat request.
type ChatOptions struct {
	Model          string
	MaxTokens      int
	Temperature    float64
	ResponseFormat ResponseFormat
}

func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{
		Model:          model,
		MaxTokens:      maxTokens,
		Temperature:    temperature,
		ResponseFormat: ResponseFormatText,
	}
}

// WithJSON returns a copy of o that forces a structured (JSON object) reply.
func (o ChatOptions) WithJSON() ChatOptions {
	o.ResponseFormat = ResponseFormatJSON
	return o
}

// LLMResponse is the normalised response from any LLM provider.
type LLMResponse struct {
	Content      *string // nil when the model returned no text
	FinishReason string
	Usage        map[string]int // "prompt_tokens", "completion_tokens", "total_tokens"
}

// Text returns the response content or "" when absent.
func (r LLMResponse) Text() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// IsError reports whether the provider turned an upstream failure into an
// error-shaped response instead of returning an error.
func (r LLMResponse) IsError() bool { return r.FinishReason == "error" }

// LLMProvider is the interface every LLM backend must satisfy.
type LLMProvider interface {
	Chat(ctx context.Context, messages Messages, opts ChatOptions) (LLMResponse, error)
	DefaultModel() string
}
