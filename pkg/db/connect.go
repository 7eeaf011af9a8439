package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// ValidSyncMode reports whether mode is an accepted synchronous pragma value.
// The empty string leaves the driver default in place.
func ValidSyncMode(mode string) bool {
	return mode == "" || validSyncModes[strings.ToUpper(mode)]
}

// IsMemoryDSN reports whether dsn names a private in-memory SQLite database.
func IsMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") || strings.Contains(dsn, "mode=memory")
}

// OpenDBConnection opens the SQLite database at baseDSN.
// enableWAL sets journal_mode=WAL; syncPragma sets the synchronous pragma
// (OFF, NORMAL, FULL, EXTRA). Foreign keys are enabled through the DSN so
// every pooled connection gets them.
func OpenDBConnection(baseDSN string, enableWAL bool, syncPragma string) (*sql.DB, error) {
	params := url.Values{}
	params.Add("_foreign_keys", "on")
	params.Add("_busy_timeout", "5000")

	if enableWAL && !IsMemoryDSN(baseDSN) {
		params.Add("_journal_mode", "WAL")
	}

	if syncPragma != "" {
		ucSyncPragma := strings.ToUpper(syncPragma)
		if !validSyncModes[ucSyncPragma] {
			return nil, fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", syncPragma)
		}
		params.Add("_synchronous", ucSyncPragma)
	}

	constructedDSN := baseDSN
	if strings.Contains(baseDSN, "?") {
		constructedDSN += "&" + params.Encode()
	} else {
		constructedDSN += "?" + params.Encode()
	}

	db, err := sql.Open("sqlite3", constructedDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", constructedDSN, err)
	}

	// Each pooled connection to :memory: would see its own empty database.
	if IsMemoryDSN(baseDSN) {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", constructedDSN, err)
	}

	return db, nil
}
