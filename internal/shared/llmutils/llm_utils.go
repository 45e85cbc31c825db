package llmutils

import (
	"regexp"
	"strings"
)

var (
	reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)
	reFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// Truncate shortens a string to at most n characters, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return reThink.ReplaceAllString(s, "")
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// CleanJSON strips think blocks and a surrounding markdown code fence so a
// model reply that wraps its JSON object in ```json … ``` still decodes.
func CleanJSON(s string) string {
	s = strings.TrimSpace(StripThink(s))
	if m := reFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
