package intent

import "time"

// DefaultConfidenceThreshold is the minimum classifier confidence for which
// a structured intent is acted on.
const DefaultConfidenceThreshold = 0.6

// Settings tunes the LLM calls and the dispatcher.
type Settings struct {
	Model               string
	MaxTokens           int
	Temperature         float64
	ConfidenceThreshold float64       // 0 acts on every classification; clamped to [0,1]
	Timeout             time.Duration // per LLM call; 0 disables
	Retries             int           // extra attempts after a failed LLM call
	Location            *time.Location
}

// DefaultSettings returns the values used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Model:               "gpt-4o-mini",
		MaxTokens:           512,
		Temperature:         0.2,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Timeout:             30 * time.Second,
		Location:            time.Local,
	}
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}
