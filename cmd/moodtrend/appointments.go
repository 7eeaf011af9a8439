package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

var (
	doctorFlag          string
	appointmentTypeFlag string
	scheduledAtFlag     string
)

var appointmentsCmd = &cobra.Command{
	Use:     "appointments",
	Aliases: []string{"appt"},
	Short:   "Book and track appointments",
}

var scheduleAppointmentCmd = &cobra.Command{
	Use:   "schedule <subject-id>",
	Short: "Book an appointment for a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var at time.Time
		if scheduledAtFlag != "" {
			parsed, err := time.Parse(time.RFC3339, scheduledAtFlag)
			if err != nil {
				return fmt.Errorf("invalid --at time, want RFC3339: %w", err)
			}
			at = parsed
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		appt, err := a.svc.ScheduleAppointment(contextOf(cmd), checkin.AppointmentInput{
			SubjectID:   args[0],
			DoctorName:  doctorFlag,
			Type:        appointmentTypeFlag,
			ScheduledAt: at,
		})
		if err != nil {
			return fmt.Errorf("failed to schedule appointment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Appointment %s booked with %s on %s (ID: %s).\n",
			appt.Code, appt.DoctorName, formatTimestamp(appt.ScheduledAt), appt.ID)
		return nil
	},
}

var listAppointmentsCmd = &cobra.Command{
	Use:   "list <subject-id>",
	Short: "List a subject's appointments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		appts, err := a.svc.Appointments(contextOf(cmd), args[0])
		if err != nil {
			return fmt.Errorf("failed to list appointments: %w", err)
		}
		if len(appts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No appointments found.")
			return nil
		}
		for _, ap := range appts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]\n", ap.Code, ap.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "  ID: %s\n", ap.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s with %s\n", ap.Type, ap.DoctorName)
			fmt.Fprintf(cmd.OutOrStdout(), "  When: %s\n", formatTimestamp(ap.ScheduledAt))
		}
		return nil
	},
}

var appointmentStatusCmd = &cobra.Command{
	Use:   "status <appointment-id> <status>",
	Short: "Set an appointment to scheduled, confirmed, completed or cancelled",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		appointmentID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid appointment ID: %w", err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		appt, err := a.svc.SetAppointmentStatus(contextOf(cmd), appointmentID, args[1])
		if errors.Is(err, records.ErrAppointmentNotFound) {
			return fmt.Errorf("appointment not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Appointment %s is now %s.\n", appt.Code, appt.Status)
		return nil
	},
}

func initAppointmentsCmd() {
	scheduleAppointmentCmd.Flags().StringVar(&doctorFlag, "doctor", "", "Clinician the appointment is with (required)")
	scheduleAppointmentCmd.Flags().StringVar(&appointmentTypeFlag, "type", checkin.DefaultAppointmentType, "Appointment type")
	scheduleAppointmentCmd.Flags().StringVar(&scheduledAtFlag, "at", "", "RFC3339 date and time, defaults to 24 hours from now")
	_ = scheduleAppointmentCmd.MarkFlagRequired("doctor")
	appointmentsCmd.AddCommand(scheduleAppointmentCmd, listAppointmentsCmd, appointmentStatusCmd)
}
