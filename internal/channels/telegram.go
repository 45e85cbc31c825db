package channels

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/config/channel"
)

const telegramMaxLen = 4000

// TelegramChannel implements the Telegram bot via long polling.
// The numeric Telegram user id is the sender key; the allowlist may name
// either the id or the username.
type TelegramChannel struct {
	Base
	cfg *channel.TelegramConfig
	bot *tgbotapi.BotAPI
}

// NewTelegramChannel creates a TelegramChannel.
func NewTelegramChannel(cfg *channel.TelegramConfig, b bus.Bus) *TelegramChannel {
	return &TelegramChannel{
		Base: NewBase(bus.ChannelTelegram, b, cfg.AllowFrom),
		cfg:  cfg,
	}
}

func (t *TelegramChannel) Name() bus.ChannelType { return bus.ChannelTelegram }

func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	bot, err := tgbotapi.NewBotAPI(t.cfg.Token)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}
	t.bot = bot
	slog.Info("telegram: connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(update)
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (t *TelegramChannel) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	senderKey := strconv.FormatInt(msg.From.ID, 10)
	identity := senderKey
	if msg.From.UserName != "" {
		identity += "|" + msg.From.UserName
	}
	if !t.IsAllowed(identity) {
		slog.Warn("access denied", "channel", t.channelName, "sender", identity)
		return
	}

	content := msg.Text
	if content == "" {
		content = msg.Caption
	}

	t.publish(senderKey, strconv.FormatInt(msg.Chat.ID, 10), content, map[string]any{
		"message_id": msg.MessageID,
		"username":   msg.From.UserName,
		"first_name": msg.From.FirstName,
		"is_group":   msg.Chat.Type != "private",
	})
}

func (t *TelegramChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	chatID, err := strconv.ParseInt(msg.ChatId(), 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", msg.ChatId(), err)
	}
	if msg.Content() == "" {
		return nil
	}

	var replyMsgID int
	if t.cfg.ReplyToMessage {
		switch v := msg.Metadata()["message_id"].(type) {
		case int:
			replyMsgID = v
		case float64:
			replyMsgID = int(v)
		}
	}

	for _, chunk := range splitMessage(msg.Content(), telegramMaxLen) {
		m := tgbotapi.NewMessage(chatID, markdownToTelegramHTML(chunk))
		m.ParseMode = tgbotapi.ModeHTML
		m.ReplyToMessageID = replyMsgID
		if _, err := t.bot.Send(m); err != nil {
			slog.Debug("telegram: html send failed, retrying as plain text", "err", err)
			plain := tgbotapi.NewMessage(chatID, chunk)
			plain.ReplyToMessageID = replyMsgID
			if _, err := t.bot.Send(plain); err != nil {
				return fmt.Errorf("telegram: send: %w", err)
			}
		}
	}
	return nil
}

var (
	reTGCodeBlock  = regexp.MustCompile("(?s)```[\\w]*\\n?(.*?)```")
	reTGInlineCode = regexp.MustCompile("`([^`]+)`")
	reTGBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reTGStrike     = regexp.MustCompile(`~~(.+?)~~`)
	reTGBullet     = regexp.MustCompile(`(?m)^[-*]\s+`)
)

// markdownToTelegramHTML converts the small markdown subset replies use into
// Telegram HTML. Code spans are set aside first so their contents stay literal.
func markdownToTelegramHTML(text string) string {
	if text == "" {
		return ""
	}

	var codes []string
	stash := func(re *regexp.Regexp, tag string) {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			codes = append(codes, tag+htmlEscape(re.FindStringSubmatch(m)[1]))
			return fmt.Sprintf("\x00%d\x00", len(codes)-1)
		})
	}
	stash(reTGCodeBlock, "pre:")
	stash(reTGInlineCode, "code:")

	text = htmlEscape(text)
	text = reTGBold.ReplaceAllString(text, "<b>$1</b>")
	text = reTGStrike.ReplaceAllString(text, "<s>$1</s>")
	text = reTGBullet.ReplaceAllString(text, "• ")

	for i, c := range codes {
		var html string
		if body, ok := strings.CutPrefix(c, "pre:"); ok {
			html = "<pre><code>" + body + "</code></pre>"
		} else {
			html = "<code>" + strings.TrimPrefix(c, "code:") + "</code>"
		}
		text = strings.ReplaceAll(text, fmt.Sprintf("\x00%d\x00", i), html)
	}
	return text
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
