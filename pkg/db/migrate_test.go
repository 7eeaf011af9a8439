package db

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := OpenDBConnection(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("OpenDBConnection failed for in-memory DB: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func tableExists(t *testing.T, conn *sql.DB, tableName string) bool {
	t.Helper()
	var name string
	err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?;`, tableName).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("Error checking if table '%s' exists: %v", tableName, err)
	}
	return name == tableName
}

func TestUpgradeDB_FreshDatabase(t *testing.T) {
	conn := openMemory(t)

	if err := UpgradeDB(conn, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed on a new in-memory database: %v", err)
	}

	for _, table := range []string{"moodtrend_versions", "subjects", "mood_samples", "alerts", "appointments"} {
		if !tableExists(t, conn, table) {
			t.Errorf("Table '%s' does not exist, but it should.", table)
		}
	}

	version, err := GetComponentSchemaVersion(conn, MoodDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed after UpgradeDB: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' at version %d, got %d", MoodDBComponent, TargetSchemaVersion, version)
	}
}

func TestGetComponentSchemaVersion_NoTable(t *testing.T) {
	conn := openMemory(t)
	version, err := GetComponentSchemaVersion(conn, MoodDBComponent)
	if err != nil {
		t.Fatalf("Expected no error before initialization, got %v", err)
	}
	if version != 0 {
		t.Errorf("Expected version 0 before initialization, got %d", version)
	}
}

func TestUpgradeDB_Idempotent(t *testing.T) {
	conn := openMemory(t)
	for i := 0; i < 2; i++ {
		if err := UpgradeDB(conn, ":memory:", TargetSchemaVersion); err != nil {
			t.Fatalf("UpgradeDB run %d failed: %v", i+1, err)
		}
	}
}

func TestUpgradeDB_VersionMismatch(t *testing.T) {
	tests := []struct {
		name      string
		dbVersion int64
		appTarget int64
		wantText  string
	}{
		{"older database without a step", TargetSchemaVersion, TargetSchemaVersion + 2, "older than application's target schema version"},
		{"newer database", TargetSchemaVersion + 1, TargetSchemaVersion, "newer than application's target schema version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := openMemory(t)
			if err := InitializeSchema(conn, tt.dbVersion); err != nil {
				t.Fatalf("InitializeSchema to version %d failed: %v", tt.dbVersion, err)
			}

			err := UpgradeDB(conn, ":memory:", tt.appTarget)
			if err == nil {
				t.Fatalf("UpgradeDB should have failed moving %d -> %d", tt.dbVersion, tt.appTarget)
			}
			prefix := fmt.Sprintf("component %s in database ':memory:' has schema version %d", MoodDBComponent, tt.dbVersion)
			if !strings.Contains(err.Error(), prefix) || !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("Unexpected error message: %s", err.Error())
			}

			current, err := GetComponentSchemaVersion(conn, MoodDBComponent)
			if err != nil {
				t.Fatalf("GetComponentSchemaVersion failed: %v", err)
			}
			if current != tt.dbVersion {
				t.Errorf("Failed upgrade changed version from %d to %d", tt.dbVersion, current)
			}
		})
	}
}

func TestUpgradeDB_MigratesVersionOne(t *testing.T) {
	conn := openMemory(t)
	if err := InitializeSchema(conn, 1); err != nil {
		t.Fatalf("InitializeSchema to version 1 failed: %v", err)
	}
	if tableExists(t, conn, "appointments") {
		t.Fatalf("Table 'appointments' should not exist at version 1")
	}
	now := time.Now().UTC()
	if _, err := conn.Exec(`INSERT INTO subjects (id, created_at) VALUES ('1', ?)`, now); err != nil {
		t.Fatalf("insert subject: %v", err)
	}

	if err := UpgradeDB(conn, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB from version 1 failed: %v", err)
	}
	if !tableExists(t, conn, "appointments") {
		t.Errorf("Table 'appointments' does not exist after migrating")
	}
	version, err := GetComponentSchemaVersion(conn, MoodDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected version %d after migrating, got %d", TargetSchemaVersion, version)
	}
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM subjects`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected existing subjects to survive the migration, got %d", n)
	}
}

func TestSchema_RejectsUnknownMood(t *testing.T) {
	conn := openMemory(t)
	if err := InitializeSchema(conn, TargetSchemaVersion); err != nil {
		t.Fatalf("InitializeSchema failed: %v", err)
	}
	now := time.Now().UTC()
	if _, err := conn.Exec(`INSERT INTO subjects (id, created_at) VALUES ('1', ?)`, now); err != nil {
		t.Fatalf("insert subject: %v", err)
	}
	_, err := conn.Exec(`INSERT INTO mood_samples (id, subject_id, mood, recorded_at) VALUES ('x', '1', 'ecstatic', ?)`, now)
	if err == nil {
		t.Errorf("Expected CHECK constraint to reject an unknown mood")
	}
}

func TestSchema_CascadesSubjectDelete(t *testing.T) {
	conn := openMemory(t)
	if err := InitializeSchema(conn, TargetSchemaVersion); err != nil {
		t.Fatalf("InitializeSchema failed: %v", err)
	}
	now := time.Now().UTC()
	if _, err := conn.Exec(`INSERT INTO subjects (id, created_at) VALUES ('1', ?)`, now); err != nil {
		t.Fatalf("insert subject: %v", err)
	}
	if _, err := conn.Exec(`INSERT INTO mood_samples (id, subject_id, mood, recorded_at) VALUES ('a', '1', 'sad', ?)`, now); err != nil {
		t.Fatalf("insert sample: %v", err)
	}
	if _, err := conn.Exec(`DELETE FROM subjects WHERE id = '1'`); err != nil {
		t.Fatalf("delete subject: %v", err)
	}
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM mood_samples`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected samples to cascade with their subject, %d left", n)
	}
}

func TestOpenDBConnection_RejectsBadSyncMode(t *testing.T) {
	if _, err := OpenDBConnection(":memory:", false, "SOMETIMES"); err == nil {
		t.Errorf("Expected an invalid sync pragma to be rejected")
	}
	if !ValidSyncMode("full") || ValidSyncMode("SOMETIMES") {
		t.Errorf("ValidSyncMode disagrees with OpenDBConnection")
	}
}
