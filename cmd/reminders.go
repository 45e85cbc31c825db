package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Daily digest of today's tasks",
}

func init() {
	remindersCmd.AddCommand(remindersRunNowCmd)
}

var remindersRunNowCmd = &cobra.Command{
	Use:   "run-now",
	Short: "Send today's digest to every owner immediately",
	RunE: func(_ *cobra.Command, _ []string) error {
		_, container, err := newContainer()
		if err != nil {
			return err
		}
		defer container.Close(context.Background())

		rem, err := container.Reminder()
		if err != nil {
			return err
		}
		mgr, err := container.Channels()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		sent, runErr := rem.DeliverNow(ctx, mgr)
		fmt.Printf("✓ Digest sent to %d owner(s)\n", sent)
		return runErr
	},
}
