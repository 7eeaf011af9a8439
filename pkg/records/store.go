package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrAlertNotFound   = errors.New("alert not found")
	ErrDuplicateSample = errors.New("sample already recorded")

	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrDuplicateAppointmentCode = errors.New("appointment code already in use")
)

// SampleRepository stores mood samples per subject. Samples come back in
// insertion order, which callers treat as chronological order.
type SampleRepository interface {
	// LoadSamples returns an empty slice for an unknown subject.
	LoadSamples(ctx context.Context, subjectID string) ([]mood.Sample, error)
	// AppendSample registers the subject on first use.
	AppendSample(ctx context.Context, sample mood.Sample) error
	// DeleteSamples wipes every sample of a subject and reports how many were removed.
	DeleteSamples(ctx context.Context, subjectID string) (int64, error)
	CreateSubject(ctx context.Context, subjectID, displayName string) (Subject, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
}

type AlertRepository interface {
	SaveAlert(ctx context.Context, alert Alert) error
	// ListAlerts returns a subject's alerts, oldest first.
	ListAlerts(ctx context.Context, subjectID string, includeDismissed bool) ([]Alert, error)
	DismissAlert(ctx context.Context, alertID uuid.UUID, actionTaken string) (Alert, error)
}

type AppointmentRepository interface {
	// SaveAppointment registers the subject on first use. A code that is
	// already taken yields ErrDuplicateAppointmentCode.
	SaveAppointment(ctx context.Context, appt Appointment) error
	// ListAppointments returns a subject's appointments in booking order.
	ListAppointments(ctx context.Context, subjectID string) ([]Appointment, error)
	SetAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status AppointmentStatus) (Appointment, error)
}

// Store is a complete persistence backend.
type Store interface {
	SampleRepository
	AlertRepository
	AppointmentRepository
	Close() error
}
