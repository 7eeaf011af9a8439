package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

var (
	noteFlag  string
	limitFlag int
	yesFlag   bool
)

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "Record and list mood check-ins",
	Long: `Record mood check-ins for a subject, list them, or reset a subject's history.

Valid moods: happy, neutral, sad, stressed, depressed.`,
}

var recordMoodCmd = &cobra.Command{
	Use:   "record <subject-id> <mood>",
	Short: "Record a mood check-in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.svc.RecordMood(contextOf(cmd), checkin.RecordInput{SubjectID: args[0], Category: args[1], Note: noteFlag})
		if err != nil {
			return fmt.Errorf("failed to record mood: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Recorded %s for %s (ID: %s)\n", res.Sample.Category, res.Sample.SubjectID, res.Sample.ID)
		fmt.Fprintf(out, "Trend: %s, %s risk (status: %s)\n", res.Insights.Trend.Direction, res.Insights.Trend.RiskLevel, res.Insights.Status)
		if res.Alert != nil {
			fmt.Fprintf(out, "ALERT %s: %s\n", res.Alert.ID, res.Alert.Message)
		}
		return nil
	},
}

var listMoodsCmd = &cobra.Command{
	Use:   "list <subject-id>",
	Short: "List a subject's check-ins, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		samples, err := a.svc.Samples(contextOf(cmd), args[0], limitFlag)
		if err != nil {
			return fmt.Errorf("failed to list moods: %w", err)
		}
		if len(samples) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No check-ins found for subject %s.\n", args[0])
			return nil
		}
		for _, s := range samples {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s (%d)", formatTimestamp(s.RecordedAt), s.Category, s.Category.Score())
			if s.Note != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s", s.Note)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

var resetMoodsCmd = &cobra.Command{
	Use:   "reset <subject-id>",
	Short: "Delete every check-in of a subject",
	Long:  `Deletes the subject's mood history. Alerts are kept for the audit trail.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !yesFlag {
			return errors.New("refusing to reset without --yes")
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.svc.ResetSubject(contextOf(cmd), args[0])
		if err != nil {
			return fmt.Errorf("failed to reset subject: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d check-ins for subject %s.\n", n, args[0])
		return nil
	},
}

func initMoodsCmd() {
	recordMoodCmd.Flags().StringVar(&noteFlag, "note", "", "Optional free-text note")
	recordMoodCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 1 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, c := range mood.Categories() {
			names = append(names, string(c))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}

	listMoodsCmd.Flags().IntVar(&limitFlag, "limit", 0, "Show only the most recent N check-ins (0 for all)")
	resetMoodsCmd.Flags().BoolVar(&yesFlag, "yes", false, "Confirm the reset")

	moodsCmd.AddCommand(recordMoodCmd, listMoodsCmd, resetMoodsCmd)
}
