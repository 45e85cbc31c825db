package channels

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/config/channel"
)

var errBridgeDown = errors.New("whatsapp: bridge not connected")

// WhatsAppChannel connects to a local WhatsApp Web bridge over WebSocket.
// The bridge owns the WhatsApp session; this side only exchanges JSON frames.
type WhatsAppChannel struct {
	Base
	cfg *channel.WhatsAppConfig

	mu   sync.Mutex // guards conn and serialises writes
	conn *websocket.Conn
}

func NewWhatsAppChannel(cfg *channel.WhatsAppConfig, b bus.Bus) *WhatsAppChannel {
	return &WhatsAppChannel{
		Base: NewBase(bus.ChannelWhatsApp, b, cfg.AllowFrom),
		cfg:  cfg,
	}
}

func (w *WhatsAppChannel) Name() bus.ChannelType { return bus.ChannelWhatsApp }

func (w *WhatsAppChannel) Start(ctx context.Context) error {
	bridgeURL := w.cfg.BridgeURL
	if bridgeURL == "" {
		bridgeURL = "ws://localhost:3001"
	}
	slog.Info("whatsapp: connecting to bridge", "url", bridgeURL)

	for {
		if err := w.connectOnce(ctx, bridgeURL); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("whatsapp: connection lost, reconnecting in 5s", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (w *WhatsAppChannel) connectOnce(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	w.setConn(conn)
	defer func() {
		w.setConn(nil)
		conn.Close()
	}()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	slog.Info("whatsapp: connected to bridge")

	if w.cfg.BridgeToken != "" {
		if err := w.write(map[string]string{"type": "auth", "token": w.cfg.BridgeToken}); err != nil {
			return err
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		w.handleBridgeMessage(raw)
	}
}

func (w *WhatsAppChannel) setConn(c *websocket.Conn) {
	w.mu.Lock()
	w.conn = c
	w.mu.Unlock()
}

func (w *WhatsAppChannel) write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return errBridgeDown
	}
	return w.conn.WriteJSON(v)
}

// bridgeFrame is the union of frames the bridge emits.
type bridgeFrame struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	PN        string `json:"pn"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	IsGroup   bool   `json:"isGroup"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

func (w *WhatsAppChannel) handleBridgeMessage(raw []byte) {
	var f bridgeFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		slog.Debug("whatsapp: invalid bridge frame", "err", err)
		return
	}
	switch f.Type {
	case "message":
		jid := f.PN
		if jid == "" {
			jid = f.Sender
		}
		// The sender key is the bare phone number, without the "@s.whatsapp.net" suffix.
		senderID, _, _ := strings.Cut(jid, "@")
		chatID := f.Sender
		if chatID == "" {
			chatID = jid
		}
		w.HandleMessage(senderID, chatID, f.Content, map[string]any{
			"message_id": f.ID,
			"timestamp":  f.Timestamp,
			"is_group":   f.IsGroup,
		})
	case "status":
		slog.Info("whatsapp: status", "status", f.Status)
	case "qr":
		slog.Info("whatsapp: scan QR code in the bridge terminal")
	case "error":
		slog.Error("whatsapp: bridge error", "error", f.Error)
	}
}

func (w *WhatsAppChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	return w.write(map[string]string{
		"type": "send",
		"to":   msg.ChatId(),
		"text": msg.Content(),
	})
}
