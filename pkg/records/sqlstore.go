package records

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

// SQLStore adapts the package-level SQLite functions to Store.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// DB exposes the underlying connection for maintenance commands.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) LoadSamples(ctx context.Context, subjectID string) ([]mood.Sample, error) {
	return LoadSamples(ctx, s.db, subjectID)
}

func (s *SQLStore) AppendSample(ctx context.Context, sample mood.Sample) error {
	return AppendSample(ctx, s.db, sample)
}

func (s *SQLStore) DeleteSamples(ctx context.Context, subjectID string) (int64, error) {
	return DeleteSamples(ctx, s.db, subjectID)
}

func (s *SQLStore) CreateSubject(ctx context.Context, subjectID, displayName string) (Subject, error) {
	return CreateSubject(ctx, s.db, subjectID, displayName)
}

func (s *SQLStore) ListSubjects(ctx context.Context) ([]Subject, error) {
	return ListSubjects(ctx, s.db)
}

func (s *SQLStore) SaveAlert(ctx context.Context, alert Alert) error {
	return SaveAlert(ctx, s.db, alert)
}

func (s *SQLStore) ListAlerts(ctx context.Context, subjectID string, includeDismissed bool) ([]Alert, error) {
	return ListAlerts(ctx, s.db, subjectID, includeDismissed)
}

func (s *SQLStore) DismissAlert(ctx context.Context, alertID uuid.UUID, actionTaken string) (Alert, error) {
	return DismissAlert(ctx, s.db, alertID, actionTaken)
}

func (s *SQLStore) SaveAppointment(ctx context.Context, appt Appointment) error {
	return SaveAppointment(ctx, s.db, appt)
}

func (s *SQLStore) ListAppointments(ctx context.Context, subjectID string) ([]Appointment, error) {
	return ListAppointments(ctx, s.db, subjectID)
}

func (s *SQLStore) SetAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status AppointmentStatus) (Appointment, error) {
	return SetAppointmentStatus(ctx, s.db, appointmentID, status)
}
