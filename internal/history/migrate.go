package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/brevita-ai/brevita/internal/briefing"
)

// legacyFileName is the flat-file serialization older releases kept the
// whole history under.
const legacyFileName = "history.json"

// Init migrates a legacy flat-file history into the structured local store
// and removes the legacy file. It reports whether a migration occurred.
func (s *Store) Init(dataDir string) (bool, error) {
	path := filepath.Join(dataDir, legacyFileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading legacy history: %w", err)
	}

	var items []briefing.HistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return false, fmt.Errorf("parsing legacy history: %w", err)
	}

	for i := range items {
		if err := s.local.InsertHistoryItem(&items[i]); err != nil {
			return false, fmt.Errorf("migrating legacy item %s: %w", items[i].ID, err)
		}
	}

	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("removing legacy history file: %w", err)
	}

	log.Printf("Migrated %d legacy history items into the local store", len(items))
	return true, nil
}
