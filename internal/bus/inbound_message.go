package bus

// InboundMessage is a message received from a chat channel.
type InboundMessage struct {
	channel  ChannelType    // "whatsapp", "telegram", "slack", "cli", ...
	senderId string         // user identifier within the channel; becomes the owner key
	chatId   string         // chat / channel / DM identifier replies are routed to
	content  string         // message text
	metadata map[string]any // channel-specific extra data (message_id, username, …)
}

// NewInboundMessage creates an InboundMessage.
// Use SetMetadata to attach optional fields.
func NewInboundMessage(channel ChannelType, senderId, chatId, content string) InboundMessage {
	return InboundMessage{
		channel:  channel,
		senderId: senderId,
		chatId:   chatId,
		content:  content,
	}
}

func (m InboundMessage) ChatId() string                 { return m.chatId }
func (m InboundMessage) SenderId() string               { return m.senderId }
func (m InboundMessage) Content() string                { return m.content }
func (m InboundMessage) Channel() ChannelType           { return m.channel }
func (m InboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *InboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

// Preview returns a short snippet of the message content for logging.
func (m InboundMessage) Preview() string {
	preview := m.content
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return preview
}

// Reply builds the OutboundMessage answering m on the same channel and chat,
// carrying m's metadata so adapters can thread or quote the reply.
func (m InboundMessage) Reply(content string) OutboundMessage {
	out := NewOutboundMessage(m.channel, m.chatId, content)
	out.SetMetadata(m.metadata)
	return out
}
