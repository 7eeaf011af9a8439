package checkin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/logging"
	"github.com/unowned-ai/moodtrend/pkg/mood"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

var ErrInvalidInput = errors.New("invalid input")

const (
	MaxNoteLength      = 2000
	MaxSubjectIDLength = 128
)

// Service records check-ins and turns a subject's history into insights.
// Writes are serialized so the open-alert check and the alert insert
// cannot interleave between two check-ins.
type Service struct {
	store records.Store
	log   *logging.Logger
	now   func() time.Time
	mu    sync.Mutex
}

func NewService(store records.Store, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type RecordInput struct {
	SubjectID string `json:"subject_id"`
	Category  string `json:"mood"`
	Note      string `json:"note,omitempty"`
}

type RecordResult struct {
	Sample   mood.Sample    `json:"sample"`
	Insights Insights       `json:"insights"`
	Alert    *records.Alert `json:"alert,omitempty"`
}

// Insights is everything the dashboards show for one subject.
type Insights struct {
	SubjectID         string           `json:"subject_id"`
	SampleCount       int              `json:"sample_count"`
	Window            mood.WindowStats `json:"window"`
	Trend             mood.Trend       `json:"trend"`
	Status            mood.Status      `json:"status"`
	Suggestions       []string         `json:"suggestions"`
	Forecast          mood.Forecast    `json:"forecast"`
	ClinicianGuidance string           `json:"clinician_guidance"`
	LatestSample      *mood.Sample     `json:"latest_sample,omitempty"`
	OpenAlerts        int              `json:"open_alerts"`
}

// ReviewRow is one line of the clinician roster. TodayAppointments
// counts visits on the service clock's current day (UTC).
type ReviewRow struct {
	SubjectID         string         `json:"subject_id"`
	DisplayName       string         `json:"display_name,omitempty"`
	Status            mood.Status    `json:"status"`
	RiskLevel         mood.RiskLevel `json:"risk_level"`
	Direction         mood.Direction `json:"direction"`
	SampleCount       int            `json:"sample_count"`
	OpenAlerts        int            `json:"open_alerts"`
	LastCheckIn       *time.Time     `json:"last_check_in,omitempty"`
	LastVisit         *time.Time     `json:"last_visit,omitempty"`
	TodayAppointments int            `json:"today_appointments"`
}

func validateSubject(subjectID string) (string, error) {
	id := strings.TrimSpace(subjectID)
	if id == "" {
		return "", fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	if len(id) > MaxSubjectIDLength {
		return "", fmt.Errorf("%w: subject id longer than %d bytes", ErrInvalidInput, MaxSubjectIDLength)
	}
	return id, nil
}

// RecordMood appends a check-in, re-analyzes the subject and raises a
// mood_decline alert when the trend calls for one and none is open yet.
func (s *Service) RecordMood(ctx context.Context, in RecordInput) (RecordResult, error) {
	subjectID, err := validateSubject(in.SubjectID)
	if err != nil {
		return RecordResult{}, err
	}
	category, err := mood.ParseCategory(in.Category)
	if err != nil {
		return RecordResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if utf8.RuneCountInString(in.Note) > MaxNoteLength {
		return RecordResult{}, fmt.Errorf("%w: note longer than %d characters", ErrInvalidInput, MaxNoteLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sample := mood.Sample{
		ID:         uuid.New(),
		SubjectID:  subjectID,
		Category:   category,
		RecordedAt: s.now(),
		Note:       strings.TrimSpace(in.Note),
	}
	if err := s.store.AppendSample(ctx, sample); err != nil {
		return RecordResult{}, fmt.Errorf("failed to store sample: %w", err)
	}
	log := s.log.With("subject_id", subjectID)
	log.Info("mood recorded", "mood", category, "note", sample.Note)

	samples, err := s.store.LoadSamples(ctx, subjectID)
	if err != nil {
		return RecordResult{}, fmt.Errorf("failed to load samples: %w", err)
	}
	openAlerts, err := s.store.ListAlerts(ctx, subjectID, false)
	if err != nil {
		return RecordResult{}, fmt.Errorf("failed to load alerts: %w", err)
	}

	result := RecordResult{Sample: sample}
	ins := buildInsights(subjectID, samples, openAlerts)

	if ins.Trend.ShouldAlert && !hasOpenDecline(openAlerts) {
		alert := records.Alert{
			ID:        uuid.New(),
			SubjectID: subjectID,
			Type:      records.AlertMoodDecline,
			Message:   declineMessage(ins.Window),
			Severity:  ins.Trend.RiskLevel,
			CreatedAt: s.now(),
		}
		if err := s.store.SaveAlert(ctx, alert); err != nil {
			return RecordResult{}, fmt.Errorf("failed to save alert: %w", err)
		}
		log.Warn("mood decline alert raised", "alert_id", alert.ID, "severity", alert.Severity)
		result.Alert = &alert
		ins.OpenAlerts++
	}

	result.Insights = ins
	return result, nil
}

func hasOpenDecline(alerts []records.Alert) bool {
	for _, a := range alerts {
		if a.Type == records.AlertMoodDecline && !a.Dismissed {
			return true
		}
	}
	return false
}

func declineMessage(w mood.WindowStats) string {
	return fmt.Sprintf("Mood decline detected: %d of the last %d check-ins were low (average %.1f/5 over %d check-ins).",
		w.BadMoodsInRow, min(len(w.Scores), mood.RecentSpan), w.Average, len(w.Scores))
}

func buildInsights(subjectID string, samples []mood.Sample, openAlerts []records.Alert) Insights {
	trend := mood.AnalyzeTrend(samples)
	ins := Insights{
		SubjectID:         subjectID,
		SampleCount:       len(samples),
		Window:            mood.Window(samples),
		Trend:             trend,
		Status:            trend.Status(),
		Suggestions:       mood.SuggestionsFor(trend.RiskLevel),
		Forecast:          mood.ForecastFor(trend.Direction),
		ClinicianGuidance: mood.ClinicianGuidance(trend.RiskLevel),
		OpenAlerts:        len(openAlerts),
	}
	if n := len(samples); n > 0 {
		latest := samples[n-1]
		ins.LatestSample = &latest
	}
	return ins
}

// Insights reads a subject's history and derives the current picture.
// An unknown subject yields the insufficient-data defaults.
func (s *Service) Insights(ctx context.Context, subjectID string) (Insights, error) {
	id, err := validateSubject(subjectID)
	if err != nil {
		return Insights{}, err
	}
	samples, err := s.store.LoadSamples(ctx, id)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to load samples: %w", err)
	}
	openAlerts, err := s.store.ListAlerts(ctx, id, false)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to load alerts: %w", err)
	}
	return buildInsights(id, samples, openAlerts), nil
}

// Samples returns the last limit samples in chronological order; limit <= 0 means all.
func (s *Service) Samples(ctx context.Context, subjectID string, limit int) ([]mood.Sample, error) {
	id, err := validateSubject(subjectID)
	if err != nil {
		return nil, err
	}
	samples, err := s.store.LoadSamples(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	return samples, nil
}

func (s *Service) Subjects(ctx context.Context) ([]records.Subject, error) {
	return s.store.ListSubjects(ctx)
}

func (s *Service) CreateSubject(ctx context.Context, subjectID, displayName string) (records.Subject, error) {
	id, err := validateSubject(subjectID)
	if err != nil {
		return records.Subject{}, err
	}
	return s.store.CreateSubject(ctx, id, strings.TrimSpace(displayName))
}

func (s *Service) Alerts(ctx context.Context, subjectID string, includeDismissed bool) ([]records.Alert, error) {
	id, err := validateSubject(subjectID)
	if err != nil {
		return nil, err
	}
	return s.store.ListAlerts(ctx, id, includeDismissed)
}

func (s *Service) DismissAlert(ctx context.Context, alertID uuid.UUID, actionTaken string) (records.Alert, error) {
	if alertID == uuid.Nil {
		return records.Alert{}, fmt.Errorf("%w: alert id is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(actionTaken) > MaxNoteLength {
		return records.Alert{}, fmt.Errorf("%w: action longer than %d characters", ErrInvalidInput, MaxNoteLength)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.DismissAlert(ctx, alertID, strings.TrimSpace(actionTaken))
	if err != nil {
		return records.Alert{}, err
	}
	s.log.Info("alert dismissed", "alert_id", alertID, "subject_id", a.SubjectID, "action_taken", a.ActionTaken)
	return a, nil
}

// ResetSubject removes every sample of a subject. Alerts are kept for the record.
func (s *Service) ResetSubject(ctx context.Context, subjectID string) (int64, error) {
	id, err := validateSubject(subjectID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.store.DeleteSamples(ctx, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("subject reset", "subject_id", id, "deleted", n)
	return n, nil
}

// Review builds the roster across all subjects, most urgent first.
func (s *Service) Review(ctx context.Context) ([]ReviewRow, error) {
	subjects, err := s.store.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	now := s.now()
	rows := make([]ReviewRow, 0, len(subjects))
	for _, subj := range subjects {
		ins, err := s.Insights(ctx, subj.ID)
		if err != nil {
			return nil, err
		}
		row := ReviewRow{
			SubjectID:   subj.ID,
			DisplayName: subj.DisplayName,
			Status:      ins.Status,
			RiskLevel:   ins.Trend.RiskLevel,
			Direction:   ins.Trend.Direction,
			SampleCount: ins.SampleCount,
			OpenAlerts:  ins.OpenAlerts,
		}
		if ins.LatestSample != nil {
			at := ins.LatestSample.RecordedAt
			row.LastCheckIn = &at
		}
		appts, err := s.store.ListAppointments(ctx, subj.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
		row.LastVisit, row.TodayAppointments = visitSummary(appts, now)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := rows[i].Status.Severity(), rows[j].Status.Severity()
		if si != sj {
			return si < sj
		}
		return rows[i].SubjectID < rows[j].SubjectID
	})
	return rows, nil
}
