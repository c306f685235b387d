package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements that create the diagnostics schema.
const Schema = `
CREATE TABLE IF NOT EXISTS diagnostics (
    id TEXT PRIMARY KEY,
    form_id TEXT NOT NULL,
    field_id TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    reference TEXT NOT NULL DEFAULT '',
    operator TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    -- Unix nanoseconds
    recorded_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_diagnostics_recorded_at ON diagnostics(recorded_at);
CREATE INDEX IF NOT EXISTS idx_diagnostics_form_id ON diagnostics(form_id);
CREATE INDEX IF NOT EXISTS idx_diagnostics_kind ON diagnostics(kind);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the newest schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO diagnostics (id, form_id, field_id, kind, reference, operator, message, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `id, form_id, field_id, kind, reference, operator, message, recorded_at`
