package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/moodtrend/pkg/report"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report <subject-id>",
	Short: "Write a PDF clinician report for a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := contextOf(cmd)
		ins, err := a.svc.Insights(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to analyze subject: %w", err)
		}
		samples, err := a.svc.Samples(ctx, args[0], report.RecentSamples)
		if err != nil {
			return fmt.Errorf("failed to load check-ins: %w", err)
		}
		alerts, err := a.svc.Alerts(ctx, args[0], false)
		if err != nil {
			return fmt.Errorf("failed to load alerts: %w", err)
		}

		out := reportOut
		if out == "" {
			out = fmt.Sprintf("moodtrend-%s.pdf", ins.SubjectID)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		data := report.Data{Insights: ins, Samples: samples, Alerts: alerts, GeneratedAt: time.Now().UTC()}
		if err := report.WritePDF(f, data); err != nil {
			f.Close()
			os.Remove(out)
			return fmt.Errorf("failed to render report: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write report file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
		return nil
	},
}

func initReportCmd() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output file (default moodtrend-<subject-id>.pdf)")
}
