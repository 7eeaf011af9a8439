package records

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

const (
	saveAlertStatement = `
	INSERT INTO alerts (id, subject_id, type, message, severity, dismissed, action_taken, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	getAlertStatement = `
	SELECT id, subject_id, type, message, severity, dismissed, action_taken, created_at
	FROM alerts
	WHERE id = ?
	`

	listAlertsStatement = `
	SELECT id, subject_id, type, message, severity, dismissed, action_taken, created_at
	FROM alerts
	WHERE subject_id = ? AND (dismissed = FALSE OR ? = TRUE)
	ORDER BY created_at ASC, rowid ASC
	`

	dismissAlertStatement = `
	UPDATE alerts
	SET dismissed = TRUE, action_taken = ?
	WHERE id = ?
	`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (Alert, error) {
	var a Alert
	var alertType, severity string
	err := row.Scan(
		&a.ID,
		&a.SubjectID,
		&alertType,
		&a.Message,
		&severity,
		&a.Dismissed,
		&a.ActionTaken,
		&a.CreatedAt,
	)
	a.Type = AlertType(alertType)
	a.Severity = mood.RiskLevel(severity)
	return a, err
}

// SaveAlert stores a new alert, registering its subject if needed.
func SaveAlert(ctx context.Context, db *sql.DB, alert Alert) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureSubject(ctx, tx, alert.SubjectID, time.Now().UTC()); err != nil {
		return err
	}
	_, err = tx.ExecContext(
		ctx,
		saveAlertStatement,
		alert.ID,
		alert.SubjectID,
		string(alert.Type),
		alert.Message,
		string(alert.Severity),
		alert.Dismissed,
		alert.ActionTaken,
		alert.CreatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func GetAlert(ctx context.Context, db *sql.DB, id uuid.UUID) (Alert, error) {
	a, err := scanAlert(db.QueryRowContext(ctx, getAlertStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Alert{}, ErrAlertNotFound
		}
		return Alert{}, err
	}
	return a, nil
}

func ListAlerts(ctx context.Context, db *sql.DB, subjectID string, includeDismissed bool) ([]Alert, error) {
	rows, err := db.QueryContext(ctx, listAlertsStatement, subjectID, includeDismissed)
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
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

// DismissAlert marks an alert handled. Dismissing twice overwrites actionTaken.
func DismissAlert(ctx context.Context, db *sql.DB, id uuid.UUID, actionTaken string) (Alert, error) {
	res, err := db.ExecContext(ctx, dismissAlertStatement, actionTaken, id)
	if err != nil {
		return Alert{}, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return Alert{}, err
	}
	if rowsAffected == 0 {
		return Alert{}, ErrAlertNotFound
	}

	return GetAlert(ctx, db, id)
}
