package db

const (
	// SchemaV1 is version 1 of the moodtrenddb component schema.
	// mood_samples.seq pins insertion order, which is the chronological
	// order the analyzer relies on.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS moodtrend_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS subjects (
    id VARCHAR(128) PRIMARY KEY,
    display_name VARCHAR(256) NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS mood_samples (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id UUID NOT NULL UNIQUE,
    subject_id VARCHAR(128) NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    mood VARCHAR(16) NOT NULL CHECK (mood IN ('happy', 'neutral', 'sad', 'stressed', 'depressed')),
    note TEXT NOT NULL DEFAULT '',
    recorded_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_mood_samples_subject ON mood_samples(subject_id, seq);

CREATE TABLE IF NOT EXISTS alerts (
    id UUID PRIMARY KEY,
    subject_id VARCHAR(128) NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    type VARCHAR(32) NOT NULL,
    message TEXT NOT NULL,
    severity VARCHAR(16) NOT NULL,
    dismissed BOOLEAN NOT NULL DEFAULT FALSE,
    action_taken TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_subject ON alerts(subject_id, created_at);
`

	// SchemaV2 adds appointments. code is the short human-facing reference.
	SchemaV2 = `
CREATE TABLE IF NOT EXISTS appointments (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id UUID NOT NULL UNIQUE,
    code VARCHAR(16) NOT NULL UNIQUE,
    subject_id VARCHAR(128) NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    doctor_name VARCHAR(256) NOT NULL,
    type VARCHAR(128) NOT NULL,
    scheduled_at TIMESTAMP NOT NULL,
    status VARCHAR(16) NOT NULL CHECK (status IN ('scheduled', 'confirmed', 'completed', 'cancelled')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_appointments_subject ON appointments(subject_id, seq);
`
)

// schemaSteps[v] moves a database from version v-1 to v.
var schemaSteps = map[int64]string{
	1: SchemaV1,
	2: SchemaV2,
}
