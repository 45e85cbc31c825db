package channels

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/config/channel"
)

// SlackChannel implements Slack via Socket Mode. The Slack user id is the
// sender key, so each Slack user owns a separate task list.
type SlackChannel struct {
	Base
	cfg       *channel.SlackConfig
	webClient *slackgo.Client
	smClient  *socketmode.Client
	botUserID string
}

func NewSlackChannel(cfg *channel.SlackConfig, b bus.Bus) *SlackChannel {
	return &SlackChannel{
		Base: NewBase(bus.ChannelSlack, b, nil), // Slack uses its own allow logic
		cfg:  cfg,
	}
}

func (s *SlackChannel) Name() bus.ChannelType { return bus.ChannelSlack }

func (s *SlackChannel) Start(ctx context.Context) error {
	if s.cfg.BotToken == "" || s.cfg.AppToken == "" {
		slog.Warn("slack: bot/app token not configured")
		<-ctx.Done()
		return ctx.Err()
	}

	s.webClient = slackgo.New(s.cfg.BotToken,
		slackgo.OptionAppLevelToken(s.cfg.AppToken))

	if resp, err := s.webClient.AuthTestContext(ctx); err == nil {
		s.botUserID = resp.UserID
		slog.Info("slack: connected", "bot_user_id", s.botUserID)
	} else {
		slog.Warn("slack: auth test failed", "err", err)
	}

	s.smClient = socketmode.New(s.webClient)

	go s.smClient.RunContext(ctx) //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-s.smClient.Events:
			if !ok {
				return nil
			}
			s.handleEvent(evt)
		}
	}
}

func (s *SlackChannel) handleEvent(evt socketmode.Event) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return
	}
	if evt.Request != nil {
		s.smClient.Ack(*evt.Request)
	}
	cb, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	switch ev := cb.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		if ev.SubType != "" || ev.BotID != "" {
			return
		}
		// Mentions arrive again as app_mention; handle them there.
		if s.botUserID != "" && strings.Contains(ev.Text, "<@"+s.botUserID+">") {
			return
		}
		s.handleText(slackText{
			evType:      cb.InnerEvent.Type,
			user:        ev.User,
			channel:     ev.Channel,
			channelType: ev.ChannelType,
			text:        ev.Text,
			ts:          ev.TimeStamp,
			threadTS:    ev.ThreadTimeStamp,
		})
	case *slackevents.AppMentionEvent:
		if ev.BotID != "" {
			return
		}
		s.handleText(slackText{
			evType:   cb.InnerEvent.Type,
			user:     ev.User,
			channel:  ev.Channel,
			text:     ev.Text,
			ts:       ev.TimeStamp,
			threadTS: ev.ThreadTimeStamp,
		})
	}
}

type slackText struct {
	evType      string
	user        string
	channel     string
	channelType string
	text        string
	ts          string
	threadTS    string
}

func (s *SlackChannel) handleText(m slackText) {
	if m.user == "" || m.channel == "" || m.user == s.botUserID {
		return
	}
	if !s.isAllowedSlack(m.user, m.channel, m.channelType) {
		return
	}
	if m.channelType != "im" && !s.shouldRespond(m.evType, m.text, m.channel) {
		return
	}

	text := s.stripMention(m.text)
	threadTS := m.threadTS
	if s.cfg.ReplyInThread && threadTS == "" {
		threadTS = m.ts
	}

	if s.webClient != nil && m.ts != "" && s.cfg.ReactEmoji != "" {
		_ = s.webClient.AddReaction(s.cfg.ReactEmoji, slackgo.ItemRef{
			Channel:   m.channel,
			Timestamp: m.ts,
		})
	}

	s.HandleMessage(m.user, m.channel, text, map[string]any{
		"slack": map[string]any{
			"thread_ts":    threadTS,
			"channel_type": m.channelType,
		},
	})
}

func (s *SlackChannel) isAllowedSlack(user, channel, channelType string) bool {
	if channelType == "im" {
		if !s.cfg.DM.Enabled {
			return false
		}
		if s.cfg.DM.Policy == "allowlist" {
			return slices.Contains(s.cfg.DM.AllowFrom, user)
		}
		return true
	}
	if s.cfg.GroupPolicy == "allowlist" {
		return slices.Contains(s.cfg.GroupAllowFrom, channel)
	}
	return true
}

func (s *SlackChannel) shouldRespond(evType, text, channel string) bool {
	switch s.cfg.GroupPolicy {
	case "open":
		return true
	case "mention":
		if evType == "app_mention" {
			return true
		}
		return s.botUserID != "" && strings.Contains(text, "<@"+s.botUserID+">")
	case "allowlist":
		return slices.Contains(s.cfg.GroupAllowFrom, channel)
	}
	return false
}

var slackMentionRe = regexp.MustCompile(`<@([A-Z0-9]+)>\s*`)

// stripMention removes the bot's own mention so the classifier sees only the request.
func (s *SlackChannel) stripMention(text string) string {
	if s.botUserID == "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(slackMentionRe.ReplaceAllStringFunc(text, func(m string) string {
		if strings.HasPrefix(m, "<@"+s.botUserID+">") {
			return ""
		}
		return m
	}))
}

func (s *SlackChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if s.webClient == nil {
		return nil
	}
	meta, _ := msg.Metadata()["slack"].(map[string]any)
	threadTS, _ := meta["thread_ts"].(string)
	channelType, _ := meta["channel_type"].(string)

	options := []slackgo.MsgOption{slackgo.MsgOptionText(msg.Content(), false)}
	if threadTS != "" && channelType != "im" {
		options = append(options, slackgo.MsgOptionTS(threadTS))
	}

	_, _, err := s.webClient.PostMessageContext(ctx, msg.ChatId(), options...)
	return err
}
