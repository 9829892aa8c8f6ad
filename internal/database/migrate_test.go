package database

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateFreshDB(t *testing.T) {
	db := openTestDB(t)

	version, err := getSchemaVersion(db.conn)
	if err != nil {
		t.Fatalf("reading version: %v", err)
	}
	if version != latestVersion() {
		t.Errorf("expected version %d, got %d", latestVersion(), version)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.InsertHistoryItem(testItem("keep", 42))
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	got, err := db.GetHistoryItem("keep")
	if err != nil || got == nil {
		t.Fatalf("expected item to survive reopen, got %v (%v)", got, err)
	}
}

func TestMigrateStampsLegacyDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// Simulate a pre-migration database: schema exists, user_version is 0.
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(`CREATE TABLE history_items (
		id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		data TEXT NOT NULL,
		pinned INTEGER DEFAULT 0,
		triage_status TEXT
	)`); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	defer db.Close()

	version, err := getSchemaVersion(db.conn)
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Errorf("expected legacy db stamped as version 1, got %d", version)
	}
}
