package channel

type ChannelsConfig struct {
	WhatsApp      WhatsAppConfig      `json:"whatsapp" yaml:"whatsapp"`
	WhatsAppCloud WhatsAppCloudConfig `json:"whatsappCloud" yaml:"whatsappCloud"`
	Telegram      TelegramConfig      `json:"telegram" yaml:"telegram"`
	Slack         SlackConfig         `json:"slack" yaml:"slack"`
}

func DefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		WhatsApp:      DefaultWhatsAppConfig(),
		WhatsAppCloud: DefaultWhatsAppCloudConfig(),
		Telegram:      DefaultTelegramConfig(),
		Slack:         DefaultSlackConfig(),
	}
}
