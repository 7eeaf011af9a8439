package records

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	ensureSubjectStatement = `
	INSERT INTO subjects (id, display_name, created_at)
	VALUES (?, '', ?)
	ON CONFLICT(id) DO NOTHING
	`

	upsertSubjectStatement = `
	INSERT INTO subjects (id, display_name, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name
	`

	getSubjectStatement = `
	SELECT s.id, s.display_name, s.created_at,
	       (SELECT COUNT(*) FROM mood_samples m WHERE m.subject_id = s.id)
	FROM subjects s
	WHERE s.id = ?
	`

	listSubjectsStatement = `
	SELECT s.id, s.display_name, s.created_at,
	       (SELECT COUNT(*) FROM mood_samples m WHERE m.subject_id = s.id)
	FROM subjects s
	ORDER BY s.id
	`
)

func ensureSubject(ctx context.Context, exec execer, subjectID string, now time.Time) error {
	_, err := exec.ExecContext(ctx, ensureSubjectStatement, subjectID, now)
	return err
}

// CreateSubject registers subjectID or renames it if it already exists.
func CreateSubject(ctx context.Context, db *sql.DB, subjectID, displayName string) (Subject, error) {
	_, err := db.ExecContext(ctx, upsertSubjectStatement, subjectID, displayName, time.Now().UTC())
	if err != nil {
		return Subject{}, err
	}
	return GetSubject(ctx, db, subjectID)
}

func GetSubject(ctx context.Context, db *sql.DB, subjectID string) (Subject, error) {
	var s Subject
	err := db.QueryRowContext(ctx, getSubjectStatement, subjectID).Scan(
		&s.ID,
		&s.DisplayName,
		&s.CreatedAt,
		&s.SampleCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, ErrSubjectNotFound
		}
		return Subject{}, err
	}
	return s, nil
}

func ListSubjects(ctx context.Context, db *sql.DB) ([]Subject, error) {
	rows, err := db.QueryContext(ctx, listSubjectsStatement)
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
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return subjects, nil
}
