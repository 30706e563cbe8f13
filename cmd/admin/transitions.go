package main

import (
	"fmt"
	"innovation-portal/internal/workflow"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var transitionsCmd = &cobra.Command{
	Use:   "transitions",
	Short: "Print the review workflow transition table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FROM\tTRIGGER\tTO\tACTOR")
		for _, t := range workflow.Transitions() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.From, t.Trigger, t.To, t.Actor)
		}
		return w.Flush()
	},
}
