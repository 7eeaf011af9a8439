package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/moodtrend/pkg/mood"
)

var insightsJSON bool

var insightsCmd = &cobra.Command{
	Use:   "insights <subject-id>",
	Short: "Show trend, forecast and suggestions for a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ins, err := a.svc.Insights(contextOf(cmd), args[0])
		if err != nil {
			return fmt.Errorf("failed to analyze subject: %w", err)
		}
		out := cmd.OutOrStdout()
		if insightsJSON {
			return printJSON(out, ins)
		}

		fmt.Fprintf(out, "Subject: %s (%d check-ins)\n", ins.SubjectID, ins.SampleCount)
		fmt.Fprintf(out, "Status: %s\n", ins.Status)
		fmt.Fprintf(out, "Trend: %s, %s risk, alert: %t\n", ins.Trend.Direction, ins.Trend.RiskLevel, ins.Trend.ShouldAlert)
		if ins.Window.Sufficient {
			fmt.Fprintf(out, "Window: average %.2f over %d, %d low of the last %d\n", ins.Window.Average, len(ins.Window.Scores), ins.Window.BadMoodsInRow, mood.RecentSpan)
		} else {
			fmt.Fprintf(out, "Window: not enough data (need %d check-ins)\n", mood.MinSamples)
		}
		fmt.Fprintf(out, "Forecast: %s (confidence %.0f%%)\n", ins.Forecast.Prediction, ins.Forecast.Confidence*100)
		for _, r := range ins.Forecast.Recommendations {
			fmt.Fprintf(out, "  - %s\n", r)
		}
		fmt.Fprintln(out, "Suggestions:")
		for _, s := range ins.Suggestions {
			fmt.Fprintf(out, "  - %s\n", s)
		}
		fmt.Fprintf(out, "Clinician guidance: %s\n", ins.ClinicianGuidance)
		fmt.Fprintf(out, "Open alerts: %d\n", ins.OpenAlerts)
		return nil
	},
}

func initInsightsCmd() {
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "Print insights as JSON")
}
