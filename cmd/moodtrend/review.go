package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reviewJSON bool

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show every subject ordered by how urgently they need attention",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		rows, err := a.svc.Review(contextOf(cmd))
		if err != nil {
			return fmt.Errorf("failed to build review: %w", err)
		}
		if reviewJSON {
			return printJSON(cmd.OutOrStdout(), rows)
		}
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No subjects found.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SUBJECT\tSTATUS\tRISK\tDIRECTION\tCHECK-INS\tALERTS\tLAST CHECK-IN\tLAST VISIT\tTODAY")
		for _, r := range rows {
			last := "-"
			if r.LastCheckIn != nil {
				last = formatTimestamp(*r.LastCheckIn)
			}
			visit := "-"
			if r.LastVisit != nil {
				visit = formatTimestamp(*r.LastVisit)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%d\n",
				r.SubjectID, r.Status, r.RiskLevel, r.Direction, r.SampleCount, r.OpenAlerts, last, visit, r.TodayAppointments)
		}
		return tw.Flush()
	},
}

func initReviewCmd() {
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "Print the review as JSON")
}
