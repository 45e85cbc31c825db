package channel

// WhatsAppConfig configures the WhatsApp channel backed by a local
// Baileys-style WebSocket bridge.
type WhatsAppConfig struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	BridgeURL   string   `json:"bridgeUrl" yaml:"bridgeUrl"`
	BridgeToken string   `json:"bridgeToken" yaml:"bridgeToken"`
	AllowFrom   []string `json:"allowFrom" yaml:"allowFrom"`
}

func DefaultWhatsAppConfig() WhatsAppConfig {
	return WhatsAppConfig{BridgeURL: "ws://localhost:3001", AllowFrom: []string{}}
}
