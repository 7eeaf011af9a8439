package records

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const (
	saveAppointmentStatement = `
	INSERT INTO appointments (id, code, subject_id, doctor_name, type, scheduled_at, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	getAppointmentStatement = `
	SELECT id, code, subject_id, doctor_name, type, scheduled_at, status, created_at
	FROM appointments
	WHERE id = ?
	`

	listAppointmentsStatement = `
	SELECT id, code, subject_id, doctor_name, type, scheduled_at, status, created_at
	FROM appointments
	WHERE subject_id = ?
	ORDER BY seq ASC
	`

	setAppointmentStatusStatement = `
	UPDATE appointments
	SET status = ?
	WHERE id = ?
	`
)

func scanAppointment(row rowScanner) (Appointment, error) {
	var a Appointment
	var status string
	err := row.Scan(
		&a.ID,
		&a.Code,
		&a.SubjectID,
		&a.DoctorName,
		&a.Type,
		&a.ScheduledAt,
		&status,
		&a.CreatedAt,
	)
	a.Status = AppointmentStatus(status)
	return a, err
}

// SaveAppointment stores appt after its subject, inside one transaction.
func SaveAppointment(ctx context.Context, db *sql.DB, appt Appointment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureSubject(ctx, tx, appt.SubjectID, time.Now().UTC()); err != nil {
		return err
	}
	_, err = tx.ExecContext(
		ctx,
		saveAppointmentStatement,
		appt.ID,
		appt.Code,
		appt.SubjectID,
		appt.DoctorName,
		appt.Type,
		appt.ScheduledAt.UTC(),
		string(appt.Status),
		appt.CreatedAt.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateAppointmentCode
		}
		return err
	}
	return tx.Commit()
}

func GetAppointment(ctx context.Context, db *sql.DB, id uuid.UUID) (Appointment, error) {
	a, err := scanAppointment(db.QueryRowContext(ctx, getAppointmentStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Appointment{}, ErrAppointmentNotFound
		}
		return Appointment{}, err
	}
	return a, nil
}

func ListAppointments(ctx context.Context, db *sql.DB, subjectID string) ([]Appointment, error) {
	rows, err := db.QueryContext(ctx, listAppointmentsStatement, subjectID)
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
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return appts, nil
}

func SetAppointmentStatus(ctx context.Context, db *sql.DB, id uuid.UUID, status AppointmentStatus) (Appointment, error) {
	res, err := db.ExecContext(ctx, setAppointmentStatusStatement, string(status), id)
	if err != nil {
		return Appointment{}, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return Appointment{}, err
	}
	if rowsAffected == 0 {
		return Appointment{}, ErrAppointmentNotFound
	}
	return GetAppointment(ctx, db, id)
}
