package database

import (
	"path/filepath"
	"testing"

	"github.com/brevita-ai/brevita/internal/briefing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testItem(id string, ts int64) *briefing.HistoryItem {
	return &briefing.HistoryItem{
		ID:        id,
		Timestamp: ts,
		Data: briefing.Briefing{
			Meta: briefing.Meta{
				Title:    "Test Briefing " + id,
				Category: "Tech",
				Tags:     []string{"test"},
			},
			Summary:   "A short summary for " + id,
			KeyPoints: []string{"point one"},
		},
	}
}

func TestInsertAndGetHistoryItem(t *testing.T) {
	db := openTestDB(t)

	want := testItem("1756500000000", 1756500000000)
	if err := db.InsertHistoryItem(want); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := db.GetHistoryItem(want.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected item, got nil")
	}
	if got.Timestamp != want.Timestamp {
		t.Errorf("timestamp = %d, want %d", got.Timestamp, want.Timestamp)
	}
	if got.Data.Meta.Title != want.Data.Meta.Title {
		t.Errorf("title = %q, want %q", got.Data.Meta.Title, want.Data.Meta.Title)
	}
	if got.Pinned {
		t.Error("expected unpinned by default")
	}
	if got.TriageStatus != "" {
		t.Errorf("expected empty triage status, got %q", got.TriageStatus)
	}
}

func TestGetHistoryItemMissing(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetHistoryItem("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing item, got %+v", got)
	}
}

func TestGetAllHistoryItemsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	db.InsertHistoryItem(testItem("a", 100))
	db.InsertHistoryItem(testItem("c", 300))
	db.InsertHistoryItem(testItem("b", 200))

	items, err := db.GetAllHistoryItems()
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "c" || items[1].ID != "b" || items[2].ID != "a" {
		t.Errorf("expected newest-first order c,b,a; got %s,%s,%s", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestDeleteHistoryItem(t *testing.T) {
	db := openTestDB(t)
	db.InsertHistoryItem(testItem("x", 1))

	if err := db.DeleteHistoryItem("x"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, _ := db.GetHistoryItem("x")
	if got != nil {
		t.Error("expected item deleted")
	}
}

func TestClearHistory(t *testing.T) {
	db := openTestDB(t)
	db.InsertHistoryItem(testItem("x", 1))
	db.InsertHistoryItem(testItem("y", 2))

	if err := db.ClearHistory(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	items, _ := db.GetAllHistoryItems()
	if len(items) != 0 {
		t.Errorf("expected empty history, got %d items", len(items))
	}
}

func TestUpdatePinnedAndTriageStatus(t *testing.T) {
	db := openTestDB(t)
	db.InsertHistoryItem(testItem("x", 1))

	if err := db.UpdatePinned("x", true); err != nil {
		t.Fatalf("update pinned failed: %v", err)
	}
	if err := db.UpdateTriageStatus("x", briefing.TriageReview); err != nil {
		t.Fatalf("update triage failed: %v", err)
	}

	got, _ := db.GetHistoryItem("x")
	if !got.Pinned {
		t.Error("expected pinned")
	}
	if got.TriageStatus != briefing.TriageReview {
		t.Errorf("expected triage status review, got %q", got.TriageStatus)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	db.InsertHistoryItem(testItem("a", 1))
	db.InsertHistoryItem(testItem("b", 2))
	db.UpdatePinned("a", true)
	db.UpdateTriageStatus("a", briefing.TriageClosed)
	db.UpdateTriageStatus("b", briefing.TriageClosed)

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.Pinned != 1 {
		t.Errorf("pinned = %d, want 1", stats.Pinned)
	}
	if stats.ByTriage[briefing.TriageClosed] != 2 {
		t.Errorf("closed = %d, want 2", stats.ByTriage[briefing.TriageClosed])
	}
}

func TestInsertReplacesExisting(t *testing.T) {
	db := openTestDB(t)
	item := testItem("x", 1)
	db.InsertHistoryItem(item)

	item.Data.Meta.Title = "Updated Title"
	if err := db.InsertHistoryItem(item); err != nil {
		t.Fatalf("reinsert failed: %v", err)
	}

	got, _ := db.GetHistoryItem("x")
	if got.Data.Meta.Title != "Updated Title" {
		t.Errorf("expected replacement, got %q", got.Data.Meta.Title)
	}
	items, _ := db.GetAllHistoryItems()
	if len(items) != 1 {
		t.Errorf("expected 1 item after replace, got %d", len(items))
	}
}
