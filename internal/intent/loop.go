package intent

import (
	"context"
	"log/slog"

	"github.com/WebNaresh/expense-management/internal/bus"
)

// Handler is the single operation the bus loop needs from the dispatcher.
type Handler interface {
	HandleMessage(ctx context.Context, message, senderKey string) string
}

// Loop reads InboundMessages from the bus, hands each to the dispatcher in
// its own goroutine and publishes the reply.
type Loop struct {
	bus     bus.Bus
	handler Handler
}

func NewLoop(b bus.Bus, handler Handler) *Loop {
	return &Loop{bus: b, handler: handler}
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("Dispatcher loop started")

	for {
		select {
		case msg := <-l.bus.InboundChan():
			go l.handle(ctx, msg)
		case <-ctx.Done():
			slog.Info("Dispatcher loop stopping")
			return ctx.Err()
		}
	}
}

// ProcessDirect handles a message outside the bus (CLI).
func (l *Loop) ProcessDirect(ctx context.Context, content, senderKey string) string {
	return l.handler.HandleMessage(ctx, content, senderKey)
}

func (l *Loop) handle(ctx context.Context, msg bus.InboundMessage) {
	slog.Info("Processing message", "sender", msg.SenderId(), "channel", msg.Channel(), "content", msg.Preview())

	reply := l.handler.HandleMessage(ctx, msg.Content(), msg.SenderId())

	slog.Info("Response", "channel", msg.Channel(), "sender", msg.SenderId(), "length", len(reply))
	if err := l.bus.PublishOutboundContext(ctx, msg.Reply(reply)); err != nil {
		slog.Warn("Reply dropped", "channel", msg.Channel(), "sender", msg.SenderId(), "err", err)
	}
}
