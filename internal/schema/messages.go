package schema

import "strings"

// Messages is the ordered list of messages exchanged with the LLM.
// It owns typed append methods so callers never construct raw maps.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
// Called with no arguments it returns an empty Messages ready for use.
func NewMessages(msgs ...Message) Messages {
	if len(msgs) == 0 {
		return Messages{Messages: make([]Message, 0)}
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// NewPrompt builds the two-message prompt used by every pipeline call:
// a fixed system instruction followed by the user's raw text.
func NewPrompt(system, user string) Messages {
	return NewMessages(NewSystemMessage(system), NewUserMessage(user))
}

// AddSystem appends a system message.
func (mh *Messages) AddSystem(content string) {
	mh.Messages = append(mh.Messages, NewSystemMessage(content))
}

// AddUser appends a user message.
func (mh *Messages) AddUser(content string) {
	mh.Messages = append(mh.Messages, NewUserMessage(content))
}

// AddAssistant appends an assistant message.
func (mh *Messages) AddAssistant(content string) {
	mh.Messages = append(mh.Messages, Message{Role: RoleAssistant, Content: content})
}

// System joins all system messages, for providers that take the system
// instruction out of band (Anthropic, Gemini).
func (mh *Messages) System() string {
	var parts []string
	for _, m := range mh.Messages {
		if m.Role == RoleSystem && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Conversation returns every non-system message in order.
func (mh *Messages) Conversation() []Message {
	out := make([]Message, 0, len(mh.Messages))
	for _, m := range mh.Messages {
		if m.Role != RoleSystem {
			out = append(out, m)
		}
	}
	return out
}

// Clone returns a copy of mh with an independent backing slice.
func (mh *Messages) Clone() Messages {
	cloned := make([]Message, len(mh.Messages))
	copy(cloned, mh.Messages)
	return Messages{Messages: cloned}
}
