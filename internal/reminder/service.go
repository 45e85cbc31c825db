// Package reminder sends each owner a scheduled digest of the tasks due today.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	robfigcron "github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/tasks"
)

const fanOut = 4

// Digester renders an owner's tasks due today and reports how many there are.
type Digester interface {
	TodaysTasks(ctx context.Context, owner string) (string, int, error)
}

// Sender delivers one message synchronously; the channel manager satisfies it.
type Sender interface {
	Send(ctx context.Context, msg bus.OutboundMessage) error
}

// Options configure a Service.
type Options struct {
	Spec     string // standard 5-field cron expression
	Location *time.Location
	Channel  bus.ChannelType // channel digests are published on
}

// Service publishes one outbound digest per owner with tasks due today.
type Service struct {
	owners  tasks.OwnerStore
	digest  Digester
	bus     bus.Bus
	channel bus.ChannelType
	spec    string
	cron    *robfigcron.Cron
}

// NewService validates opts.Spec and returns an unstarted Service.
func NewService(owners tasks.OwnerStore, digest Digester, b bus.Bus, opts Options) (*Service, error) {
	if _, err := robfigcron.ParseStandard(opts.Spec); err != nil {
		return nil, fmt.Errorf("reminder: invalid cron expression %q: %w", opts.Spec, err)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	ch := opts.Channel
	if ch == "" {
		ch = bus.ChannelWhatsAppCloud
	}
	return &Service{
		owners:  owners,
		digest:  digest,
		bus:     b,
		channel: ch,
		spec:    opts.Spec,
		cron:    robfigcron.New(robfigcron.WithLocation(loc)),
	}, nil
}

// Start schedules the digest and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunNow(ctx); err != nil {
			slog.Error("reminder: digest run failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("reminder: schedule: %w", err)
	}

	s.cron.Start()
	slog.Info("reminder: started", "cron", s.spec, "channel", s.channel)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// RunNow publishes the digest to the bus immediately and returns how many
// owners got one. A failure for one owner does not stop the others; the
// first error is returned.
func (s *Service) RunNow(ctx context.Context) (int, error) {
	return s.run(ctx, s.bus.PublishOutboundContext)
}

// DeliverNow is RunNow with each digest handed straight to sender, so the
// caller knows every message has left once it returns.
func (s *Service) DeliverNow(ctx context.Context, sender Sender) (int, error) {
	return s.run(ctx, sender.Send)
}

func (s *Service) run(ctx context.Context, deliver func(context.Context, bus.OutboundMessage) error) (int, error) {
	owners, err := s.owners.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("reminder: list owners: %w", err)
	}

	var (
		sent atomic.Int32
		g    errgroup.Group
	)
	g.SetLimit(fanOut)
	for _, o := range owners {
		g.Go(func() error {
			text, n, err := s.digest.TodaysTasks(ctx, o.Key)
			if err != nil {
				slog.Error("reminder: digest failed", "owner", o.Key, "err", err)
				return fmt.Errorf("reminder: owner %s: %w", o.Key, err)
			}
			if n == 0 {
				return nil
			}
			if err := deliver(ctx, bus.NewOutboundMessage(s.channel, o.Key, text)); err != nil {
				slog.Error("reminder: delivery failed", "owner", o.Key, "channel", s.channel, "err", err)
				return fmt.Errorf("reminder: deliver to %s: %w", o.Key, err)
			}
			sent.Add(1)
			return nil
		})
	}
	err = g.Wait()

	slog.Info("reminder: digest sent", "owners", len(owners), "sent", sent.Load())
	return int(sent.Load()), err
}
