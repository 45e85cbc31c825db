package schema

import (
	"context"

	"github.com/WebNaresh/expense-management/internal/bus"
)

// Channel is the interface every messaging adapter must implement.
type Channel interface {
	// Name returns the channel identifier (e.g. "whatsapp_cloud").
	Name() bus.ChannelType
	// Start begins listening for incoming messages; it blocks until ctx is cancelled.
	Start(ctx context.Context) error
	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg bus.OutboundMessage) error
}
