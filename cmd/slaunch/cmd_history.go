package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"slaunch/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past submissions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded submissions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tJOB\tSUBMITTED\tARGS")
		for _, r := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				r.ID, r.Name, r.JobID,
				r.SubmittedAt.Local().Format(time.DateTime), r.Args)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := store.Get(id)
		if err != nil {
			return fmt.Errorf("submission %d: %w", id, err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:         %d\n", r.ID)
		fmt.Fprintf(out, "Name:       %s\n", r.Name)
		fmt.Fprintf(out, "Job ID:     %s\n", r.JobID)
		fmt.Fprintf(out, "Script:     %s\n", r.ScriptPath)
		fmt.Fprintf(out, "Args:       %s\n", r.Args)
		fmt.Fprintf(out, "Submitted:  %s\n", r.SubmittedAt.Local().Format(time.DateTime))
		if r.Summary != "" {
			fmt.Fprintf(out, "Summary:\n%s", r.Summary)
		}
		return nil
	},
}

func openHistory() (*history.Store, error) {
	path, err := history.DefaultPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}
