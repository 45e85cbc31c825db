package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "Manage task owners (registered sender numbers)",
}

var ownerName string

func init() {
	ownersAddCmd.Flags().StringVarP(&ownerName, "name", "n", "", "Display name")
	ownersCmd.AddCommand(ownersAddCmd)
	ownersCmd.AddCommand(ownersListCmd)
}

var ownersAddCmd = &cobra.Command{
	Use:   "add <key>",
	Short: "Register an owner; the key is the sender id, e.g. a WhatsApp number",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		_, container, err := newContainer()
		if err != nil {
			return err
		}
		defer container.Close(context.Background())

		store, err := container.Store()
		if err != nil {
			return err
		}
		o, err := store.AddOwner(context.Background(), args[0], ownerName)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Owner %s registered (id %s)\n", o.Key, o.ID)
		return nil
	},
}

var ownersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered owners",
	RunE: func(_ *cobra.Command, _ []string) error {
		_, container, err := newContainer()
		if err != nil {
			return err
		}
		defer container.Close(context.Background())

		store, err := container.Store()
		if err != nil {
			return err
		}
		owners, err := store.ListOwners(context.Background())
		if err != nil {
			return err
		}
		if len(owners) == 0 {
			fmt.Println("No owners registered. Add one with: spendit owners add <number>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tSINCE")
		for _, o := range owners {
			fmt.Fprintf(w, "%s\t%s\t%s\n", o.Key, o.Name, o.CreatedAt.Format(time.DateOnly))
		}
		return w.Flush()
	},
}
