package records

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

const (
	appendSampleStatement = `
	INSERT INTO mood_samples (id, subject_id, mood, note, recorded_at)
	VALUES (?, ?, ?, ?, ?)
	`

	loadSamplesStatement = `
	SELECT id, subject_id, mood, note, recorded_at
	FROM mood_samples
	WHERE subject_id = ?
	ORDER BY seq ASC
	`

	deleteSamplesStatement = `
	DELETE FROM mood_samples
	WHERE subject_id = ?
	`
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppendSample stores sample after its subject, inside one transaction.
func AppendSample(ctx context.Context, db *sql.DB, sample mood.Sample) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureSubject(ctx, tx, sample.SubjectID, time.Now().UTC()); err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		appendSampleStatement,
		sample.ID,
		sample.SubjectID,
		string(sample.Category),
		sample.Note,
		sample.RecordedAt.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateSample
		}
		return err
	}

	return tx.Commit()
}

// LoadSamples returns the samples of subjectID in insertion order.
func LoadSamples(ctx context.Context, db *sql.DB, subjectID string) ([]mood.Sample, error) {
	rows, err := db.QueryContext(ctx, loadSamplesStatement, subjectID)
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
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

func DeleteSamples(ctx context.Context, db *sql.DB, subjectID string) (int64, error) {
	res, err := db.ExecContext(ctx, deleteSamplesStatement, subjectID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
