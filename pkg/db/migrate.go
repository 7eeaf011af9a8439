package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// TargetSchemaVersion is the highest moodtrenddb schema version this build understands.
	TargetSchemaVersion int64 = 2
	// MoodDBComponent names the mood store in the versions table.
	MoodDBComponent = "moodtrenddb"
)

// GetComponentSchemaVersion returns the recorded schema version of componentName,
// or 0 when the component or the versions table does not exist yet.
func GetComponentSchemaVersion(db *sql.DB, componentName string) (int64, error) {
	var version int64
	err := db.QueryRow(`SELECT version FROM moodtrend_versions WHERE component = ?;`, componentName).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

func setComponentVersion(tx *sql.Tx, version int64) error {
	_, err := tx.Exec(`
INSERT INTO moodtrend_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`,
		MoodDBComponent, version)
	if err != nil {
		return fmt.Errorf("failed to set version for component %s to %d: %w", MoodDBComponent, version, err)
	}
	return nil
}

// applySteps runs the schema steps from+1..to in one transaction and
// records to as the new version. Every step up to to must exist.
func applySteps(db *sql.DB, from, to int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for v := from + 1; v <= to; v++ {
		step, ok := schemaSteps[v]
		if !ok {
			return fmt.Errorf("no schema step for version %d", v)
		}
		if _, err := tx.Exec(step); err != nil {
			return fmt.Errorf("failed to execute schema v%d SQL: %w", v, err)
		}
	}
	if err := setComponentVersion(tx, to); err != nil {
		return err
	}
	return tx.Commit()
}

// InitializeSchema creates every moodtrenddb table up to schemaVersionToSet
// and records that version. Versions past the known steps only record the
// number, which tests use to simulate databases from other builds.
func InitializeSchema(db *sql.DB, schemaVersionToSet int64) error {
	known := schemaVersionToSet
	if known > TargetSchemaVersion {
		known = TargetSchemaVersion
	}
	if err := applySteps(db, 0, known); err != nil {
		return err
	}
	if known == schemaVersionToSet {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := setComponentVersion(tx, schemaVersionToSet); err != nil {
		return err
	}
	return tx.Commit()
}

// UpgradeDB brings the moodtrenddb component of db up to appTargetSchemaVersion.
// A fresh database is initialized; an older one is migrated step by step.
// A newer database, or a gap in the known steps, is reported as an error
// and leaves the database untouched.
func UpgradeDB(db *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64) error {
	currentDBVersion, err := GetComponentSchemaVersion(db, MoodDBComponent)
	if err != nil {
		return err
	}

	switch {
	case currentDBVersion == 0:
		fmt.Fprintf(os.Stderr, "Initializing %s in '%s' at schema version %d\n", MoodDBComponent, dbIdentifierForLog, appTargetSchemaVersion)
		if err := applySteps(db, 0, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", MoodDBComponent, dbIdentifierForLog, err)
		}
		return nil
	case currentDBVersion == appTargetSchemaVersion:
		return nil
	case currentDBVersion < appTargetSchemaVersion:
		for v := currentDBVersion + 1; v <= appTargetSchemaVersion; v++ {
			if _, ok := schemaSteps[v]; !ok {
				return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not yet supported", MoodDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
			}
		}
		fmt.Fprintf(os.Stderr, "Migrating %s in '%s' from schema version %d to %d\n", MoodDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
		if err := applySteps(db, currentDBVersion, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("failed to migrate component %s in database '%s': %w", MoodDBComponent, dbIdentifierForLog, err)
		}
		return nil
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", MoodDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}
}

// OpenAndUpgrade opens dsn and makes sure its schema is current.
func OpenAndUpgrade(dsn string, enableWAL bool, syncPragma string) (*sql.DB, error) {
	conn, err := OpenDBConnection(dsn, enableWAL, syncPragma)
	if err != nil {
		return nil, err
	}
	if err := UpgradeDB(conn, dsn, TargetSchemaVersion); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
