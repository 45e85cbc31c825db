package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/WebNaresh/expense-management/internal/schema"
	"github.com/WebNaresh/expense-management/internal/shared/llmutils"
)

// DefaultFallbackReply is returned when the model cannot produce a reply.
const DefaultFallbackReply = "I'm not sure how to respond to that. Can you try again?"

// Responder produces a conversational reply when no structured intent applies.
type Responder interface {
	Respond(ctx context.Context, message string) string
}

// LLMResponder answers free-form with a chat model.
type LLMResponder struct {
	provider schema.LLMProvider
	settings Settings
}

func NewLLMResponder(provider schema.LLMProvider, settings Settings) *LLMResponder {
	return &LLMResponder{provider: provider, settings: settings}
}

// Respond always returns non-empty text.
func (r *LLMResponder) Respond(ctx context.Context, message string) string {
	opts := schema.NewChatOptions(r.settings.Model, r.settings.MaxTokens, r.settings.Temperature)
	text, err := complete(ctx, r.provider, schema.NewPrompt(fallbackPrompt, message), opts, r.settings)
	if err != nil {
		slog.Warn("intent: fallback reply failed", "err", err)
		return DefaultFallbackReply
	}
	return llmutils.StringOrDefault(strings.TrimSpace(llmutils.StripThink(text)), DefaultFallbackReply)
}
