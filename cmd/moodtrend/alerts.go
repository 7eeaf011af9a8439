package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/unowned-ai/moodtrend/pkg/records"
)

var (
	includeDismissedFlag bool
	actionFlag           string
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List and dismiss clinician alerts",
}

var listAlertsCmd = &cobra.Command{
	Use:   "list <subject-id>",
	Short: "List a subject's alerts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		alerts, err := a.svc.Alerts(contextOf(cmd), args[0], includeDismissedFlag)
		if err != nil {
			return fmt.Errorf("failed to list alerts: %w", err)
		}
		if len(alerts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No alerts found.")
			return nil
		}
		for _, al := range alerts {
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\n", al.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "  Type: %s, Severity: %s\n", al.Type, al.Severity)
			fmt.Fprintf(cmd.OutOrStdout(), "  Message: %s\n", al.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "  Created: %s\n", formatTimestamp(al.CreatedAt))
			if al.Dismissed {
				fmt.Fprintf(cmd.OutOrStdout(), "  Dismissed: %s\n", al.ActionTaken)
			}
		}
		return nil
	},
}

var dismissAlertCmd = &cobra.Command{
	Use:   "dismiss <alert-id>",
	Short: "Dismiss an alert and record the action taken",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		alertID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid alert ID: %w", err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		alert, err := a.svc.DismissAlert(contextOf(cmd), alertID, actionFlag)
		if errors.Is(err, records.ErrAlertNotFound) {
			return fmt.Errorf("alert not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to dismiss alert: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Alert %s dismissed for subject %s.\n", alert.ID, alert.SubjectID)
		return nil
	},
}

func initAlertsCmd() {
	listAlertsCmd.Flags().BoolVar(&includeDismissedFlag, "all", false, "Include dismissed alerts")
	dismissAlertCmd.Flags().StringVar(&actionFlag, "action", "", "Action taken, kept with the alert")
	alertsCmd.AddCommand(listAlertsCmd, dismissAlertCmd)
}
