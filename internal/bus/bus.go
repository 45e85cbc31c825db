// Package bus defines the message types that flow between channels and the dispatcher.
package bus

import "context"

type ChannelType string

const (
	ChannelWhatsApp      ChannelType = "whatsapp"
	ChannelWhatsAppCloud ChannelType = "whatsapp_cloud"
	ChannelTelegram      ChannelType = "telegram"
	ChannelSlack         ChannelType = "slack"
	ChannelCLI           ChannelType = "cli"
)

// Bus is the contract between chat channels and the dispatcher.
// Implementations may use buffered channels, pub/sub systems, or any other transport.
type Bus interface {
	// PublishInbound delivers a message from a channel to the dispatcher.
	PublishInbound(msg InboundMessage)
	// PublishOutbound delivers a reply from the dispatcher to a channel.
	PublishOutbound(msg OutboundMessage)
	// PublishOutboundContext is PublishOutbound that gives up when ctx is done.
	PublishOutboundContext(ctx context.Context, msg OutboundMessage) error
	// InboundChan returns a receive-only channel for the dispatcher to consume.
	InboundChan() <-chan InboundMessage
	// OutboundChan returns a receive-only channel for the channel manager to consume.
	OutboundChan() <-chan OutboundMessage
}

// MessageBus is the default in-process Bus implementation backed by buffered Go channels.
//
// Channels push InboundMessages; the dispatcher consumes them and pushes
// OutboundMessages back for the channel manager to route.
// Both directions use buffered channels so senders never block on a slow consumer.
type MessageBus struct {
	inbound  chan InboundMessage  // channels -> dispatcher
	outbound chan OutboundMessage // dispatcher -> channels
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufSize),
		outbound: make(chan OutboundMessage, bufSize),
	}
}

// PublishInbound sends an InboundMessage to the dispatcher.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	b.inbound <- msg
}

// PublishOutbound sends an OutboundMessage to the channel manager.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	b.outbound <- msg
}

// PublishOutboundContext sends an OutboundMessage unless ctx ends first,
// which happens once nothing drains a full buffer.
func (b *MessageBus) PublishOutboundContext(ctx context.Context, msg OutboundMessage) error {
	select {
	case b.outbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InboundChan returns a receive-only view of the inbound channel.
func (b *MessageBus) InboundChan() <-chan InboundMessage {
	return b.inbound
}

// OutboundChan returns a receive-only view of the outbound channel.
func (b *MessageBus) OutboundChan() <-chan OutboundMessage {
	return b.outbound
}
