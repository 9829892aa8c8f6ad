package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/brevita-ai/brevita/internal/briefing"
)

// InsertHistoryItem stores a history item. The briefing payload is kept as
// a JSON document so the schema never has to chase the briefing contract.
func (db *DB) InsertHistoryItem(item *briefing.HistoryItem) error {
	data, err := json.Marshal(item.Data)
	if err != nil {
		return fmt.Errorf("marshaling briefing: %w", err)
	}

	var status *string
	if item.TriageStatus != "" {
		status = &item.TriageStatus
	}

	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO history_items (id, timestamp, data, pinned, triage_status)
		VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Timestamp, string(data), boolToInt(item.Pinned), status,
	)
	return err
}

// GetHistoryItem returns one history item, or nil if it does not exist.
func (db *DB) GetHistoryItem(id string) (*briefing.HistoryItem, error) {
	row := db.conn.QueryRow(
		"SELECT id, timestamp, data, pinned, triage_status FROM history_items WHERE id = ?", id,
	)
	item, err := scanHistoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

// GetAllHistoryItems returns every history item, newest first.
func (db *DB) GetAllHistoryItems() ([]briefing.HistoryItem, error) {
	rows, err := db.conn.Query(
		"SELECT id, timestamp, data, pinned, triage_status FROM history_items ORDER BY timestamp DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []briefing.HistoryItem
	for rows.Next() {
		item, err := scanHistoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// DeleteHistoryItem removes one history item.
func (db *DB) DeleteHistoryItem(id string) error {
	_, err := db.conn.Exec("DELETE FROM history_items WHERE id = ?", id)
	return err
}

// ClearHistory removes every history item.
func (db *DB) ClearHistory() error {
	_, err := db.conn.Exec("DELETE FROM history_items")
	return err
}

// UpdatePinned sets the pinned flag on a history item.
func (db *DB) UpdatePinned(id string, pinned bool) error {
	_, err := db.conn.Exec("UPDATE history_items SET pinned = ? WHERE id = ?", boolToInt(pinned), id)
	return err
}

// UpdateTriageStatus sets the triage status on a history item.
func (db *DB) UpdateTriageStatus(id, status string) error {
	_, err := db.conn.Exec("UPDATE history_items SET triage_status = ? WHERE id = ?", status, id)
	return err
}

// Stats contains aggregate history statistics.
type Stats struct {
	Total    int
	Pinned   int
	ByTriage map[string]int
}

// GetStats returns aggregate statistics over stored briefings.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{ByTriage: make(map[string]int)}

	if err := db.conn.QueryRow("SELECT COUNT(*) FROM history_items").Scan(&s.Total); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM history_items WHERE pinned = 1").Scan(&s.Pinned); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(
		"SELECT triage_status, COUNT(*) FROM history_items WHERE triage_status IS NOT NULL GROUP BY triage_status",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		s.ByTriage[status] = count
	}
	return s, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryItem(row rowScanner) (*briefing.HistoryItem, error) {
	var item briefing.HistoryItem
	var data string
	var pinned int
	var status *string

	if err := row.Scan(&item.ID, &item.Timestamp, &data, &pinned, &status); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(data), &item.Data); err != nil {
		return nil, fmt.Errorf("unmarshaling briefing %s: %w", item.ID, err)
	}
	item.Pinned = pinned != 0
	if status != nil {
		item.TriageStatus = *status
	}
	return &item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
