package reminder

// ReminderConfig schedules the daily digest of today's tasks.
type ReminderConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Cron     string `json:"cron" yaml:"cron"`         // standard 5-field expression
	Timezone string `json:"timezone" yaml:"timezone"` // IANA name for the schedule
	Channel  string `json:"channel" yaml:"channel"`   // channel the digest is sent on
}

func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		Cron:    "0 8 * * *",
		Channel: "whatsapp_cloud",
	}
}
