package channel

// WhatsAppCloudConfig configures the WhatsApp Business Cloud API channel:
// an inbound webhook served by the gateway and outbound Graph API calls.
type WhatsAppCloudConfig struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	PhoneNumberID string   `json:"phoneNumberId" yaml:"phoneNumberId"`
	AccessToken   string   `json:"accessToken" yaml:"accessToken"`
	VerifyToken   string   `json:"verifyToken" yaml:"verifyToken"`
	WebhookPath   string   `json:"webhookPath" yaml:"webhookPath"`
	APIBase       string   `json:"apiBase" yaml:"apiBase"`
	CountryCode   string   `json:"countryCode" yaml:"countryCode"` // prepended to recipient numbers lacking it
	DedupSize     int      `json:"dedupSize" yaml:"dedupSize"`     // recent message ids remembered to drop redeliveries
	AllowFrom     []string `json:"allowFrom" yaml:"allowFrom"`
}

func DefaultWhatsAppCloudConfig() WhatsAppCloudConfig {
	return WhatsAppCloudConfig{
		WebhookPath: "/api/whatsapp",
		APIBase:     "https://graph.facebook.com/v17.0",
		CountryCode: "91",
		DedupSize:   1024,
		AllowFrom:   []string{},
	}
}
