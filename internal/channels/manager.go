package channels

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/config"
	"github.com/WebNaresh/expense-management/internal/schema"
)

// Manager owns all enabled channels and routes outbound messages.
type Manager struct {
	channels map[bus.ChannelType]schema.Channel
	b        bus.Bus
	cloud    *WhatsAppCloudChannel // nil unless enabled; exposes the webhook handler
}

// NewEmptyManager creates a Manager with no channels; callers Register their own.
func NewEmptyManager(b bus.Bus) *Manager {
	return &Manager{
		channels: make(map[bus.ChannelType]schema.Channel),
		b:        b,
	}
}

// NewManager creates a Manager and initialises all enabled channels.
func NewManager(cfg *config.Config, b bus.Bus) *Manager {
	m := NewEmptyManager(b)

	if cfg.Channels.WhatsAppCloud.Enabled {
		m.cloud = NewWhatsAppCloudChannel(&cfg.Channels.WhatsAppCloud, b)
		m.Register(m.cloud)
	}
	if cfg.Channels.WhatsApp.Enabled {
		m.Register(NewWhatsAppChannel(&cfg.Channels.WhatsApp, b))
	}
	if cfg.Channels.Telegram.Enabled {
		m.Register(NewTelegramChannel(&cfg.Channels.Telegram, b))
	}
	if cfg.Channels.Slack.Enabled {
		m.Register(NewSlackChannel(&cfg.Channels.Slack, b))
	}

	return m
}

// Register adds ch, replacing any channel with the same name.
func (m *Manager) Register(ch schema.Channel) {
	m.channels[ch.Name()] = ch
	slog.Info("channel enabled", "name", ch.Name())
}

// EnabledChannels returns the names of all enabled channels, sorted.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}

// WhatsAppCloud returns the Cloud API channel, or nil when it is disabled.
func (m *Manager) WhatsAppCloud() *WhatsAppCloudChannel { return m.cloud }

// Send routes msg to its channel directly, bypassing the outbound queue.
func (m *Manager) Send(ctx context.Context, msg bus.OutboundMessage) error {
	ch, ok := m.channels[msg.Channel()]
	if !ok {
		return fmt.Errorf("channel %q not enabled", msg.Channel())
	}
	return ch.Send(ctx, msg)
}

// StartAll starts all channels concurrently and dispatches outbound messages.
// Blocks until ctx is cancelled.
func (m *Manager) StartAll(ctx context.Context) error {
	go m.Dispatch(ctx) //nolint:errcheck

	for name, ch := range m.channels {
		go func(n bus.ChannelType, c schema.Channel) {
			slog.Info("starting channel", "name", n)
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("channel exited with error", "name", n, "err", err)
			}
		}(name, ch)
	}

	<-ctx.Done()
	return ctx.Err()
}

// Dispatch reads from the bus and routes each message to the appropriate
// channel's Send method without starting any channel. Blocks until ctx is
// cancelled.
func (m *Manager) Dispatch(ctx context.Context) error {
	for {
		select {
		case msg := <-m.b.OutboundChan():
			if err := m.Send(ctx, msg); err != nil {
				slog.Error("send error", "channel", msg.Channel(), "err", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
