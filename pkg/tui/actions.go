package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/mood"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

// recentSamples is how many check-ins the middle column shows.
const recentSamples = 30

type subjectsMsg []records.Subject

type subjectDetailsMsg struct {
	subjectID string
	samples   []mood.Sample
	insights  checkin.Insights
	alerts    []records.Alert
}

type recordedMsg struct {
	result checkin.RecordResult
}

type dismissedMsg struct {
	alert records.Alert
}

func listSubjects(svc *checkin.Service) tea.Cmd {
	return func() tea.Msg {
		subjects, err := svc.Subjects(context.Background())
		if err != nil {
			return err
		}
		return subjectsMsg(subjects)
	}
}

// loadSubject fetches everything the detail columns show for subjectID.
func loadSubject(svc *checkin.Service, subjectID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		samples, err := svc.Samples(ctx, subjectID, recentSamples)
		if err != nil {
			return err
		}
		ins, err := svc.Insights(ctx, subjectID)
		if err != nil {
			return err
		}
		alerts, err := svc.Alerts(ctx, subjectID, false)
		if err != nil {
			return err
		}
		return subjectDetailsMsg{subjectID: subjectID, samples: samples, insights: ins, alerts: alerts}
	}
}

func recordMood(svc *checkin.Service, in checkin.RecordInput) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.RecordMood(context.Background(), in)
		if err != nil {
			return err
		}
		return recordedMsg{result: res}
	}
}

func dismissAlert(svc *checkin.Service, alertID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		a, err := svc.DismissAlert(context.Background(), alertID, "dismissed from terminal UI")
		if err != nil {
			return err
		}
		return dismissedMsg{alert: a}
	}
}

type subjectCreatedMsg struct {
	subject records.Subject
}

func createSubject(svc *checkin.Service, subjectID string) tea.Cmd {
	return func() tea.Msg {
		subject, err := svc.CreateSubject(context.Background(), subjectID, "")
		if err != nil {
			return err
		}
		return subjectCreatedMsg{subject: subject}
	}
}
