package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/WebNaresh/expense-management/internal/intent"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect stored tasks",
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
}

var tasksListCmd = &cobra.Command{
	Use:   "list <owner>",
	Short: "List every task of an owner, earliest due first",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, container, err := newContainer()
		if err != nil {
			return err
		}
		defer container.Close(context.Background())

		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		store, err := container.Store()
		if err != nil {
			return err
		}
		list, err := store.ListOpenTasks(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Printf("No tasks for %s\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DONE\tDUE\tNAME\tID")
		for _, t := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", yesNo(t.Completed), intent.FormatDue(t.DueAt, loc), t.Name, t.ID)
		}
		return w.Flush()
	},
}
