package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/WebNaresh/expense-management/internal/schema"
)

// anthropicJSONHint is appended to the system prompt on the Anthropic path,
// which has no response_format switch.
const anthropicJSONHint = "Respond with a single JSON object and no other text."

// OpenAIProvider makes direct HTTP calls to any OpenAI-compatible endpoint,
// and also handles the Anthropic Messages API as a special case.
type OpenAIProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	extraHeaders map[string]string
	gateway      *ProviderSpec // non-nil for gateway/local providers
	spec         *ProviderSpec // non-nil for standard providers
	isAnthropic  bool
	httpClient   *http.Client
}

// NewOpenAIProvider constructs a provider from raw config values.
// The caller extracts these from config.Config to avoid an import cycle.
func NewOpenAIProvider(
	apiKey, apiBase, defaultModel, providerName string,
	extraHeaders map[string]string,
) *OpenAIProvider {
	gateway := FindGateway(providerName, apiKey, apiBase)

	var spec *ProviderSpec
	if gateway == nil {
		spec = FindByName(providerName)
		if spec == nil {
			spec = FindByModel(defaultModel)
		}
	}

	effectiveBase := apiBase
	if effectiveBase == "" {
		switch {
		case gateway != nil && gateway.DefaultAPIBase != "":
			effectiveBase = gateway.DefaultAPIBase
		case spec != nil && spec.DefaultAPIBase != "":
			effectiveBase = spec.DefaultAPIBase
		default:
			effectiveBase = "https://api.openai.com/v1"
		}
	}
	effectiveBase = strings.TrimRight(effectiveBase, "/")

	isAnthropic := (spec != nil && spec.IsAnthropic) ||
		strings.Contains(strings.ToLower(effectiveBase), "anthropic.com")

	return &OpenAIProvider{
		apiKey:       apiKey,
		apiBase:      effectiveBase,
		defaultModel: defaultModel,
		extraHeaders: extraHeaders,
		gateway:      gateway,
		spec:         spec,
		isAnthropic:  isAnthropic,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Chat implements schema.LLMProvider. It dispatches to Anthropic or OpenAI-compat paths.
func (p *OpenAIProvider) Chat(ctx context.Context, messages schema.Messages, opts schema.ChatOptions) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	opts.Model = p.resolveModel(model)

	if p.isAnthropic {
		return p.chatAnthropic(ctx, messages, opts)
	}
	return p.chatOpenAI(ctx, messages, opts)
}

// ---------------------------------------------------------------------------
// OpenAI-compatible path
// ---------------------------------------------------------------------------

func (p *OpenAIProvider) chatOpenAI(ctx context.Context, messages schema.Messages, opts schema.ChatOptions) (schema.LLMResponse, error) {
	wire := make([]map[string]any, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		wire = append(wire, m.ToWireMap())
	}
	body := map[string]any{
		"model":       opts.Model,
		"messages":    wire,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	if opts.ResponseFormat == schema.ResponseFormatJSON {
		body["response_format"] = map[string]any{"type": string(schema.ResponseFormatJSON)}
	}

	raw, status, err := p.post(ctx, "/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	})
	if err != nil {
		return schema.LLMResponse{}, err
	}
	if status != http.StatusOK {
		return errResponse(fmt.Sprintf("HTTP %d: %s", status, friendlyHTTPError(status, raw)))
	}
	return parseOpenAIResponse(raw)
}

// ---------------------------------------------------------------------------
// Anthropic Messages API path
// ---------------------------------------------------------------------------

func (p *OpenAIProvider) chatAnthropic(ctx context.Context, messages schema.Messages, opts schema.ChatOptions) (schema.LLMResponse, error) {
	system := messages.System()
	if opts.ResponseFormat == schema.ResponseFormatJSON {
		system = strings.TrimSpace(system + "\n\n" + anthropicJSONHint)
	}

	conv := messages.Conversation()
	converted := make([]map[string]any, 0, len(conv))
	for _, m := range conv {
		converted = append(converted, map[string]any{"role": m.Role, "content": m.Content})
	}

	body := map[string]any{
		"model":       opts.Model,
		"messages":    converted,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	if system != "" {
		body["system"] = system
	}

	raw, status, err := p.post(ctx, "/messages", body, map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("anthropic: %w", err)
	}
	if status != http.StatusOK {
		return errResponse(fmt.Sprintf("HTTP %d: %s", status, friendlyHTTPError(status, raw)))
	}
	return parseAnthropicResponse(raw)
}

// post sends body as JSON to apiBase+path and returns the raw response body.
func (p *OpenAIProvider) post(ctx context.Context, path string, body map[string]any, headers map[string]string) ([]byte, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for k, v := range p.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// ---------------------------------------------------------------------------
// Model resolution
// ---------------------------------------------------------------------------

// resolveModel strips routing prefixes from the model string so the provider
// API receives the bare model name it expects.
//
// Gateways keep the "vendor/model" form they route on and only drop their
// own prefix ("openrouter/"). Standard providers drop any known provider
// prefix.
func (p *OpenAIProvider) resolveModel(model string) string {
	if p.gateway != nil {
		if pfx := p.gateway.RoutingPrefix; pfx != "" {
			full := pfx + "/"
			if strings.HasPrefix(strings.ToLower(model), full) {
				model = model[len(full):]
			}
		}
		return model
	}

	var prefixes []string
	if p.spec != nil {
		prefixes = append(prefixes, p.spec.RoutingPrefix, p.spec.Name)
	}
	for _, pfx := range prefixes {
		if pfx == "" {
			continue
		}
		full := pfx + "/"
		if strings.HasPrefix(strings.ToLower(model), full) {
			return model[len(full):]
		}
	}
	if before, after, ok := strings.Cut(model, "/"); ok {
		norm := strings.ReplaceAll(strings.ToLower(before), "-", "_")
		if FindByName(norm) != nil {
			return after
		}
	}
	return model
}

// ---------------------------------------------------------------------------
// Response parsers
// ---------------------------------------------------------------------------

// openAIRespBody is the subset of the OpenAI chat completion response we care about.
type openAIRespBody struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseOpenAIResponse(raw []byte) (schema.LLMResponse, error) {
	var body openAIRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("parse OpenAI response: %w", err)
	}
	if len(body.Choices) == 0 {
		return schema.LLMResponse{}, fmt.Errorf("empty choices in response")
	}

	var content *string
	if c, ok := body.Choices[0].Message.Content.(string); ok && c != "" {
		content = &c
	}

	finish := body.Choices[0].FinishReason
	if finish == "" {
		finish = "stop"
	}

	return schema.LLMResponse{
		Content:      content,
		FinishReason: finish,
		Usage: map[string]int{
			"prompt_tokens":     body.Usage.PromptTokens,
			"completion_tokens": body.Usage.CompletionTokens,
			"total_tokens":      body.Usage.TotalTokens,
		},
	}, nil
}

// anthropicRespBody models the Anthropic Messages API response.
type anthropicRespBody struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func parseAnthropicResponse(raw []byte) (schema.LLMResponse, error) {
	var body anthropicRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("parse Anthropic response: %w", err)
	}

	var sb strings.Builder
	for _, block := range body.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	var content *string
	if s := sb.String(); s != "" {
		content = &s
	}

	finish := "stop"
	if body.StopReason != "" && body.StopReason != "end_turn" {
		finish = body.StopReason
	}

	return schema.LLMResponse{
		Content:      content,
		FinishReason: finish,
		Usage: map[string]int{
			"prompt_tokens":     body.Usage.InputTokens,
			"completion_tokens": body.Usage.OutputTokens,
			"total_tokens":      body.Usage.InputTokens + body.Usage.OutputTokens,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Utilities
// ---------------------------------------------------------------------------

func errResponse(msg string) (schema.LLMResponse, error) {
	s := msg
	return schema.LLMResponse{Content: &s, FinishReason: "error"}, nil
}

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
