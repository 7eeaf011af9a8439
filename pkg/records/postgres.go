package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

// postgresSchema mirrors the SQLite schema; seq keeps insertion order.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS subjects (
    id VARCHAR(128) PRIMARY KEY,
    display_name VARCHAR(256) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS mood_samples (
    seq BIGSERIAL PRIMARY KEY,
    id UUID NOT NULL UNIQUE,
    subject_id VARCHAR(128) NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    mood VARCHAR(16) NOT NULL CHECK (mood IN ('happy', 'neutral', 'sad', 'stressed', 'depressed')),
    note TEXT NOT NULL DEFAULT '',
    recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_mood_samples_subject ON mood_samples(subject_id, seq);

CREATE TABLE IF NOT EXISTS alerts (
    seq BIGSERIAL,
    id UUID PRIMARY KEY,
    subject_id VARCHAR(128) NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    type VARCHAR(32) NOT NULL,
    message TEXT NOT NULL,
    severity VARCHAR(16) NOT NULL,
    dismissed BOOLEAN NOT NULL DEFAULT FALSE,
    action_taken TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS appointments (
    seq BIGSERIAL PRIMARY KEY,
    id UUID NOT NULL UNIQUE,
    code VARCHAR(16) NOT NULL UNIQUE,
    subject_id VARCHAR(128) NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    doctor_name VARCHAR(256) NOT NULL,
    type VARCHAR(128) NOT NULL,
    scheduled_at TIMESTAMPTZ NOT NULL,
    status VARCHAR(16) NOT NULL CHECK (status IN ('scheduled', 'confirmed', 'completed', 'cancelled')),
    created_at TIMESTAMPTZ NOT NULL
);
`

const pqUniqueViolation = "23505"

// PostgresStore is a Store backed by PostgreSQL through lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dsn and creates the tables if they are missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create postgres schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (r *PostgresStore) Close() error { return r.db.Close() }

func (r *PostgresStore) ensureSubject(ctx context.Context, tx *sql.Tx, subjectID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO subjects (id, created_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		subjectID, time.Now().UTC())
	return err
}

func (r *PostgresStore) LoadSamples(ctx context.Context, subjectID string) ([]mood.Sample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, subject_id, mood, note, recorded_at FROM mood_samples WHERE subject_id = $1 ORDER BY seq`,
		subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := []mood.Sample{}
	for rows.Next() {
		var s mood.Sample
		var category string
		if err := rows.Scan(&s.ID, &s.SubjectID, &category, &s.Note, &s.RecordedAt); err != nil {
			return nil, err
		}
		s.Category = mood.Category(category)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func (r *PostgresStore) AppendSample(ctx context.Context, sample mood.Sample) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.ensureSubject(ctx, tx, sample.SubjectID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO mood_samples (id, subject_id, mood, note, recorded_at) VALUES ($1, $2, $3, $4, $5)`,
		sample.ID, sample.SubjectID, string(sample.Category), sample.Note, sample.RecordedAt.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateSample
		}
		return err
	}
	return tx.Commit()
}

func (r *PostgresStore) DeleteSamples(ctx context.Context, subjectID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mood_samples WHERE subject_id = $1`, subjectID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresStore) CreateSubject(ctx context.Context, subjectID, displayName string) (Subject, error) {
	var s Subject
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subjects (id, display_name, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id, display_name, created_at,
			(SELECT COUNT(*) FROM mood_samples WHERE subject_id = $1)`,
		subjectID, displayName, time.Now().UTC()).Scan(&s.ID, &s.DisplayName, &s.CreatedAt, &s.SampleCount)
	if err != nil {
		return Subject{}, err
	}
	return s, nil
}

func (r *PostgresStore) ListSubjects(ctx context.Context) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.display_name, s.created_at,
			(SELECT COUNT(*) FROM mood_samples m WHERE m.subject_id = s.id)
		FROM subjects s ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []Subject{}
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.DisplayName, &s.CreatedAt, &s.SampleCount); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *PostgresStore) SaveAlert(ctx context.Context, alert Alert) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.ensureSubject(ctx, tx, alert.SubjectID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO alerts (id, subject_id, type, message, severity, dismissed, action_taken, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		alert.ID, alert.SubjectID, string(alert.Type), alert.Message, string(alert.Severity),
		alert.Dismissed, alert.ActionTaken, alert.CreatedAt.UTC())
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresStore) ListAlerts(ctx context.Context, subjectID string, includeDismissed bool) ([]Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject_id, type, message, severity, dismissed, action_taken, created_at
		FROM alerts
		WHERE subject_id = $1 AND (dismissed = FALSE OR $2)
		ORDER BY created_at, seq`,
		subjectID, includeDismissed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *PostgresStore) DismissAlert(ctx context.Context, alertID uuid.UUID, actionTaken string) (Alert, error) {
	a, err := scanAlert(r.db.QueryRowContext(ctx, `
		UPDATE alerts SET dismissed = TRUE, action_taken = $1
		WHERE id = $2
		RETURNING id, subject_id, type, message, severity, dismissed, action_taken, created_at`,
		actionTaken, alertID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Alert{}, ErrAlertNotFound
		}
		return Alert{}, err
	}
	return a, nil
}

func (r *PostgresStore) SaveAppointment(ctx context.Context, appt Appointment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.ensureSubject(ctx, tx, appt.SubjectID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (id, code, subject_id, doctor_name, type, scheduled_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		appt.ID, appt.Code, appt.SubjectID, appt.DoctorName, appt.Type,
		appt.ScheduledAt.UTC(), string(appt.Status), appt.CreatedAt.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateAppointmentCode
		}
		return err
	}
	return tx.Commit()
}

func (r *PostgresStore) ListAppointments(ctx context.Context, subjectID string) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, subject_id, doctor_name, type, scheduled_at, status, created_at
		FROM appointments
		WHERE subject_id = $1
		ORDER BY seq`,
		subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (r *PostgresStore) SetAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status AppointmentStatus) (Appointment, error) {
	a, err := scanAppointment(r.db.QueryRowContext(ctx, `
		UPDATE appointments SET status = $1
		WHERE id = $2
		RETURNING id, code, subject_id, doctor_name, type, scheduled_at, status, created_at`,
		string(status), appointmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Appointment{}, ErrAppointmentNotFound
		}
		return Appointment{}, err
	}
	return a, nil
}
