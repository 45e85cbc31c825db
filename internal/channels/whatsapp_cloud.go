package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/gorilla/mux"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/config/channel"
)

const (
	defaultGraphAPIBase = "https://graph.facebook.com/v17.0"
	maxWebhookBody      = 1 << 20
)

// WhatsAppCloudChannel receives messages through the WhatsApp Business
// Cloud API webhook and replies through the Graph API. The sender's phone
// number (the webhook "from" field) is the sender key.
type WhatsAppCloudChannel struct {
	Base
	cfg    *channel.WhatsAppCloudConfig
	client *http.Client

	mu   sync.Mutex
	seen *lru.Cache // message ids already published
}

func NewWhatsAppCloudChannel(cfg *channel.WhatsAppCloudConfig, b bus.Bus) *WhatsAppCloudChannel {
	size := cfg.DedupSize
	if size <= 0 {
		size = 1024
	}
	return &WhatsAppCloudChannel{
		Base:   NewBase(bus.ChannelWhatsAppCloud, b, cfg.AllowFrom),
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		seen:   lru.New(size),
	}
}

func (w *WhatsAppCloudChannel) Name() bus.ChannelType { return bus.ChannelWhatsAppCloud }

// Start has nothing to poll; inbound traffic arrives on the gateway's HTTP
// server through RegisterRoutes.
func (w *WhatsAppCloudChannel) Start(ctx context.Context) error {
	if w.cfg.PhoneNumberID == "" || w.cfg.AccessToken == "" {
		slog.Warn("whatsapp_cloud: phone number id or access token not configured, replies will fail")
	}
	<-ctx.Done()
	return ctx.Err()
}

// WebhookPath is the route the webhook is served on.
func (w *WhatsAppCloudChannel) WebhookPath() string {
	if w.cfg.WebhookPath == "" {
		return "/api/whatsapp"
	}
	return w.cfg.WebhookPath
}

// RegisterRoutes mounts the verification and delivery handlers on r.
func (w *WhatsAppCloudChannel) RegisterRoutes(r *mux.Router) {
	r.HandleFunc(w.WebhookPath(), w.handleVerify).Methods(http.MethodGet)
	r.HandleFunc(w.WebhookPath(), w.handleWebhook).Methods(http.MethodPost)
}

// handleVerify answers Meta's subscription handshake.
func (w *WhatsAppCloudChannel) handleVerify(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "" || token == "" || challenge == "" {
		http.Error(rw, "Missing required parameters", http.StatusBadRequest)
		return
	}
	if mode != "subscribe" || w.cfg.VerifyToken == "" || token != w.cfg.VerifyToken {
		slog.Warn("whatsapp_cloud: webhook verification rejected", "mode", mode)
		http.Error(rw, "Forbidden", http.StatusForbidden)
		return
	}
	slog.Info("whatsapp_cloud: webhook verified")
	rw.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(rw, challenge)
}

// webhookPayload mirrors the subset of the Cloud API notification we read.
type webhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID      string          `json:"id"`
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Field string       `json:"field"`
	Value webhookValue `json:"value"`
}

type webhookValue struct {
	MessagingProduct string `json:"messaging_product"`
	Metadata         struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Contacts []struct {
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
		WaID string `json:"wa_id"`
	} `json:"contacts"`
	Messages []webhookMessage `json:"messages"`
}

type webhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
}

func (p *webhookPayload) validate() error {
	if p.Object == "" {
		return errors.New("missing object")
	}
	if p.Entry == nil {
		return errors.New("missing entry")
	}
	for _, e := range p.Entry {
		if e.ID == "" || e.Changes == nil {
			return errors.New("entry missing id or changes")
		}
		for _, c := range e.Changes {
			if c.Field == "" || c.Value.MessagingProduct == "" {
				return errors.New("change missing field or messaging_product")
			}
			for _, m := range c.Value.Messages {
				if m.From == "" || m.ID == "" || m.Type == "" {
					return errors.New("message missing from, id or type")
				}
			}
		}
	}
	return nil
}

// handleWebhook validates the notification, publishes each new text message
// and acknowledges with 200 so Meta does not redeliver.
func (w *WhatsAppCloudChannel) handleWebhook(rw http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	dec := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody))
	if err := dec.Decode(&payload); err != nil {
		slog.Warn("whatsapp_cloud: undecodable webhook payload", "err", err)
		http.Error(rw, "Invalid webhook payload", http.StatusBadRequest)
		return
	}
	if err := payload.validate(); err != nil {
		slog.Warn("whatsapp_cloud: invalid webhook payload", "err", err)
		http.Error(rw, "Invalid webhook payload", http.StatusBadRequest)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				w.handleCloudMessage(m)
			}
		}
	}

	rw.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(rw, "OK")
}

func (w *WhatsAppCloudChannel) handleCloudMessage(m webhookMessage) {
	if !w.firstDelivery(m.ID) {
		slog.Debug("whatsapp_cloud: duplicate delivery dropped", "message_id", m.ID)
		return
	}
	if m.Text == nil {
		slog.Debug("whatsapp_cloud: non-text message ignored", "type", m.Type, "from", m.From)
		return
	}
	w.HandleMessage(m.From, m.From, m.Text.Body, map[string]any{
		"message_id": m.ID,
		"timestamp":  m.Timestamp,
	})
}

// firstDelivery records id and reports whether it had not been seen before.
func (w *WhatsAppCloudChannel) firstDelivery(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen.Get(id); ok {
		return false
	}
	w.seen.Add(id, struct{}{})
	return true
}

// recipient prefixes the configured country code onto numbers lacking it.
func (w *WhatsAppCloudChannel) recipient(number string) string {
	number = strings.TrimPrefix(strings.TrimSpace(number), "+")
	cc := w.cfg.CountryCode
	if cc == "" || strings.HasPrefix(number, cc) {
		return number
	}
	return cc + number
}

type graphTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// Send posts a text message to the Graph API messages endpoint.
func (w *WhatsAppCloudChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if w.cfg.PhoneNumberID == "" || w.cfg.AccessToken == "" {
		return errors.New("whatsapp_cloud: phone number id or access token not configured")
	}

	body := graphTextMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               w.recipient(msg.ChatId()),
		Type:             "text",
	}
	body.Text.Body = msg.Content()
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("whatsapp_cloud: marshal message: %w", err)
	}

	base := strings.TrimRight(w.cfg.APIBase, "/")
	if base == "" {
		base = defaultGraphAPIBase
	}
	url := base + "/" + w.cfg.PhoneNumberID + "/messages"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("whatsapp_cloud: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp_cloud: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp_cloud: graph api %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	slog.Debug("whatsapp_cloud: message sent", "to", body.To)
	return nil
}
