package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/WebNaresh/expense-management/internal/schema"
)

// Classifier guesses the intent of a message.
type Classifier interface {
	Classify(ctx context.Context, message string) Classification
}

// LLMClassifier classifies with a chat model in JSON mode.
type LLMClassifier struct {
	provider schema.LLMProvider
	settings Settings
	now      func() time.Time
}

func NewLLMClassifier(provider schema.LLMProvider, settings Settings) *LLMClassifier {
	return &LLMClassifier{provider: provider, settings: settings, now: time.Now}
}

// Classify never fails: upstream errors and unparseable replies both yield
// Unclassified().
func (c *LLMClassifier) Classify(ctx context.Context, message string) Classification {
	prompt := schema.NewPrompt(classifierSystemPrompt(c.now().In(c.settings.location())), message)
	opts := schema.NewChatOptions(c.settings.Model, c.settings.MaxTokens, c.settings.Temperature).WithJSON()

	text, err := complete(ctx, c.provider, prompt, opts, c.settings)
	if err != nil {
		slog.Warn("intent: classification failed", "err", err)
		return Unclassified()
	}

	result := ParseClassification(text)
	slog.Debug("intent: classified", "intent", result.Intent, "confidence", result.Confidence)
	return result
}

var errEmptyReply = errors.New("empty model reply")

// complete runs one chat call with the configured timeout, retrying upstream
// failures up to settings.Retries times with linear backoff.
func complete(ctx context.Context, p schema.LLMProvider, prompt schema.Messages, opts schema.ChatOptions, s Settings) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := completeOnce(ctx, p, prompt, opts, s.Timeout)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		slog.Debug("intent: llm attempt failed", "attempt", attempt+1, "err", err)
	}
	return "", lastErr
}

func completeOnce(ctx context.Context, p schema.LLMProvider, prompt schema.Messages, opts schema.ChatOptions, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp, err := p.Chat(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("provider error: %s", resp.Text())
	}
	if resp.Text() == "" {
		return "", errEmptyReply
	}
	return resp.Text(), nil
}
