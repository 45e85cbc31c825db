package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/WebNaresh/expense-management/internal/schema"
)

// GeminiProvider calls the Gemini API through the google genai SDK.
// The client is created lazily on the first Chat call, detached from that
// call's deadline since it outlives it.
type GeminiProvider struct {
	apiKey       string
	defaultModel string

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func NewGeminiProvider(apiKey, defaultModel string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey, defaultModel: defaultModel}
}

func (p *GeminiProvider) DefaultModel() string { return p.defaultModel }

func (p *GeminiProvider) init(ctx context.Context) error {
	p.once.Do(func() {
		if p.apiKey == "" {
			p.clientErr = fmt.Errorf("gemini: api key is required")
			return
		}
		p.client, p.clientErr = genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return p.clientErr
}

// Chat implements schema.LLMProvider.
func (p *GeminiProvider) Chat(ctx context.Context, messages schema.Messages, opts schema.ChatOptions) (schema.LLMResponse, error) {
	if err := p.init(ctx); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("create gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	model = strings.TrimPrefix(model, "gemini/")

	resp, err := p.client.Models.GenerateContent(ctx, model, geminiContents(messages), geminiConfig(messages, opts))
	if err != nil {
		return errResponse(fmt.Sprintf("Gemini error: %v", err))
	}

	text := resp.Text()
	var content *string
	if text != "" {
		content = &text
	}

	finish := "stop"
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" &&
		resp.Candidates[0].FinishReason != genai.FinishReasonStop {
		finish = strings.ToLower(string(resp.Candidates[0].FinishReason))
	}

	usage := map[string]int{}
	if u := resp.UsageMetadata; u != nil {
		usage["prompt_tokens"] = int(u.PromptTokenCount)
		usage["completion_tokens"] = int(u.CandidatesTokenCount)
		usage["total_tokens"] = int(u.TotalTokenCount)
	}

	return schema.LLMResponse{Content: content, FinishReason: finish, Usage: usage}, nil
}

func geminiContents(messages schema.Messages) []*genai.Content {
	conv := messages.Conversation()
	out := make([]*genai.Content, 0, len(conv))
	for _, m := range conv {
		role := genai.Role(genai.RoleUser)
		if m.Role == schema.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

func geminiConfig(messages schema.Messages, opts schema.ChatOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if sys := messages.System(); sys != "" {
		cfg.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	if opts.ResponseFormat == schema.ResponseFormatJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}
