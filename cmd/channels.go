package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Inspect messaging channels",
}

func init() {
	channelsCmd.AddCommand(channelsStatusCmd)
}

var channelsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show channel status",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ch := cfg.Channels
		type row struct{ name, enabled, detail string }
		rows := []row{
			{
				"WhatsApp Cloud",
				yesNo(ch.WhatsAppCloud.Enabled),
				func() string {
					if ch.WhatsAppCloud.PhoneNumberID == "" || ch.WhatsAppCloud.AccessToken == "" {
						return "(not configured)"
					}
					return fmt.Sprintf("%s on :%d%s", ch.WhatsAppCloud.PhoneNumberID, cfg.Gateway.Port, ch.WhatsAppCloud.WebhookPath)
				}(),
			},
			{
				"WhatsApp bridge",
				yesNo(ch.WhatsApp.Enabled),
				ch.WhatsApp.BridgeURL,
			},
			{
				"Telegram",
				yesNo(ch.Telegram.Enabled),
				tokenHint(ch.Telegram.Token),
			},
			{
				"Slack",
				yesNo(ch.Slack.Enabled),
				func() string {
					if ch.Slack.AppToken != "" && ch.Slack.BotToken != "" {
						return "socket"
					}
					return "(not configured)"
				}(),
			},
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL\tENABLED\tDETAIL")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.name, r.enabled, r.detail)
		}
		return w.Flush()
	},
}

func yesNo(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

func tokenHint(s string) string {
	if s == "" {
		return "(not configured)"
	}
	if len(s) > 10 {
		return s[:10] + "..."
	}
	return s
}
