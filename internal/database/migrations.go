package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS history_items (
    id TEXT PRIMARY KEY,
    timestamp INTEGER NOT NULL,
    data TEXT NOT NULL,
    pinned INTEGER DEFAULT 0,
    triage_status TEXT
);

CREATE INDEX IF NOT EXISTS idx_history_items_timestamp ON history_items(timestamp);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
