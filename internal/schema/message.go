package schema

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the prompt sent to the LLM.
type Message struct {
	Role    string
	Content string
}

func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ToWireMap serialises a Message into the OpenAI wire-format map.
func (m Message) ToWireMap() map[string]any {
	return map[string]any{
		"role":    m.Role,
		"content": m.Content,
	}
}
