package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "Manage subjects",
	Long:  `Create and list the subjects mood check-ins are recorded for.`,
}

var createSubjectCmd = &cobra.Command{
	Use:   "create <subject-id>",
	Short: "Create a subject or update its display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		subject, err := a.svc.CreateSubject(contextOf(cmd), args[0], name)
		if err != nil {
			return fmt.Errorf("failed to create subject: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subject saved: %s", subject.ID)
		if subject.DisplayName != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s)", subject.DisplayName)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

var listSubjectsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all subjects",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		subjects, err := a.svc.Subjects(contextOf(cmd))
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}
		if len(subjects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No subjects found.")
			return nil
		}
		for _, s := range subjects {
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\n", s.ID)
			if s.DisplayName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  Name: %s\n", s.DisplayName)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  Check-ins: %d\n", s.SampleCount)
			fmt.Fprintf(cmd.OutOrStdout(), "  Created: %s\n", formatTimestamp(s.CreatedAt))
		}
		return nil
	},
}

func initSubjectsCmd() {
	createSubjectCmd.Flags().String("name", "", "Display name for the subject")
	subjectsCmd.AddCommand(createSubjectCmd, listSubjectsCmd)
}
