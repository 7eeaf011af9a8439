package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

const (
	DefaultAppointmentType = "General Consultation"
	MaxDoctorNameLength    = 256
	MaxAppointmentTypeLen  = 128

	// DefaultLeadTime places an appointment booked without a date one day out.
	DefaultLeadTime = 24 * time.Hour

	appointmentCodePrefix = "APPT-"
	appointmentCodeLength = 6
	codeAttempts          = 5
	codeAlphabet          = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type AppointmentInput struct {
	SubjectID   string    `json:"subject_id"`
	DoctorName  string    `json:"doctor_name"`
	Type        string    `json:"type,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
}

// newAppointmentCode draws six characters from a random UUID.
func newAppointmentCode() string {
	raw := uuid.New()
	var b strings.Builder
	b.WriteString(appointmentCodePrefix)
	for i := 0; i < appointmentCodeLength; i++ {
		b.WriteByte(codeAlphabet[int(raw[i])%len(codeAlphabet)])
	}
	return b.String()
}

// ScheduleAppointment books a visit for a subject. An empty type becomes
// DefaultAppointmentType and a zero time becomes now plus DefaultLeadTime.
// A code collision is retried with a fresh code.
func (s *Service) ScheduleAppointment(ctx context.Context, in AppointmentInput) (records.Appointment, error) {
	subjectID, err := validateSubject(in.SubjectID)
	if err != nil {
		return records.Appointment{}, err
	}
	doctor := strings.TrimSpace(in.DoctorName)
	if doctor == "" {
		return records.Appointment{}, fmt.Errorf("%w: doctor name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(doctor) > MaxDoctorNameLength {
		return records.Appointment{}, fmt.Errorf("%w: doctor name longer than %d characters", ErrInvalidInput, MaxDoctorNameLength)
	}
	kind := strings.TrimSpace(in.Type)
	if kind == "" {
		kind = DefaultAppointmentType
	}
	if utf8.RuneCountInString(kind) > MaxAppointmentTypeLen {
		return records.Appointment{}, fmt.Errorf("%w: appointment type longer than %d characters", ErrInvalidInput, MaxAppointmentTypeLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	at := in.ScheduledAt
	if at.IsZero() {
		at = now.Add(DefaultLeadTime)
	}
	appt := records.Appointment{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		DoctorName:  doctor,
		Type:        kind,
		ScheduledAt: at.UTC(),
		Status:      records.AppointmentScheduled,
		CreatedAt:   now,
	}
	for attempt := 1; ; attempt++ {
		appt.Code = newAppointmentCode()
		err = s.store.SaveAppointment(ctx, appt)
		if !errors.Is(err, records.ErrDuplicateAppointmentCode) || attempt == codeAttempts {
			break
		}
		s.log.Debug("appointment code collision, retrying", "code", appt.Code, "attempt", attempt)
	}
	if err != nil {
		return records.Appointment{}, fmt.Errorf("failed to save appointment: %w", err)
	}
	s.log.Info("appointment scheduled", "subject_id", subjectID, "code", appt.Code, "scheduled_at", appt.ScheduledAt)
	return appt, nil
}

// Appointments lists a subject's appointments in booking order.
func (s *Service) Appointments(ctx context.Context, subjectID string) ([]records.Appointment, error) {
	id, err := validateSubject(subjectID)
	if err != nil {
		return nil, err
	}
	return s.store.ListAppointments(ctx, id)
}

func (s *Service) SetAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status string) (records.Appointment, error) {
	if appointmentID == uuid.Nil {
		return records.Appointment{}, fmt.Errorf("%w: appointment id is required", ErrInvalidInput)
	}
	st := records.AppointmentStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return records.Appointment{}, fmt.Errorf("%w: unknown appointment status %q", ErrInvalidInput, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.SetAppointmentStatus(ctx, appointmentID, st)
	if err != nil {
		return records.Appointment{}, err
	}
	s.log.Info("appointment status changed", "code", a.Code, "subject_id", a.SubjectID, "status", a.Status)
	return a, nil
}

// visitSummary reports the latest past visit and how many visits fall on
// now's calendar day. Cancelled appointments count for neither.
func visitSummary(appts []records.Appointment, now time.Time) (*time.Time, int) {
	var last *time.Time
	today := 0
	y, m, d := now.Date()
	for _, a := range appts {
		if a.Status == records.AppointmentCancelled {
			continue
		}
		at := a.ScheduledAt.In(now.Location())
		if ay, am, ad := at.Date(); ay == y && am == m && ad == d {
			today++
		}
		if !at.After(now) && (last == nil || at.After(*last)) {
			v := at
			last = &v
		}
	}
	return last, today
}
