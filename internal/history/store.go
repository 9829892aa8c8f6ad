// Package history persists briefings with a remote-preferred,
// local-fallback strategy: the hosted store is used whenever an
// authenticated session exists, and the embedded local store keeps every
// operation working offline.
package history

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/brevita-ai/brevita/internal/briefing"
	"github.com/brevita-ai/brevita/internal/database"
)

// remoteBackend is the remote store surface the Store drives; a narrow
// interface so tests can fake remote failures.
type remoteBackend interface {
	Insert(ctx context.Context, auth AuthState, b *briefing.Briefing) (*briefing.HistoryItem, error)
	GetAll(ctx context.Context, auth AuthState) ([]briefing.HistoryItem, error)
	Delete(ctx context.Context, auth AuthState, id string) error
	Clear(ctx context.Context, auth AuthState) error
	UpdatePinned(ctx context.Context, auth AuthState, id string, pinned bool) error
	UpdateTriageStatus(ctx context.Context, auth AuthState, id, status string) error
}

// Store is the briefing history store.
type Store struct {
	local  *database.DB
	remote remoteBackend
}

// NewStore creates a history store over a local database and an optional
// remote store.
func NewStore(local *database.DB, remote *RemoteStore) *Store {
	s := &Store{local: local}
	if remote != nil {
		s.remote = remote
	}
	return s
}

func (s *Store) useRemote(auth AuthState) bool {
	return s.remote != nil && auth.Authenticated()
}

// Save persists a briefing. With an authenticated session the remote store
// is preferred; any remote failure falls back to a local insert so the
// briefing is never lost.
func (s *Store) Save(ctx context.Context, auth AuthState, b *briefing.Briefing) (*briefing.HistoryItem, error) {
	if s.useRemote(auth) {
		item, err := s.remote.Insert(ctx, auth, b)
		if err == nil {
			return item, nil
		}
		log.Printf("Remote save failed, falling back to local: %v", err)
	}

	now := time.Now()
	item := &briefing.HistoryItem{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Timestamp: now.UnixMilli(),
		Data:      *b,
	}
	if err := s.local.InsertHistoryItem(item); err != nil {
		return nil, fmt.Errorf("saving briefing failed on every storage path: %w", err)
	}
	return item, nil
}

// GetAll returns stored briefings newest first. Remote and local result
// sets are never merged; whichever backend answered is authoritative.
func (s *Store) GetAll(ctx context.Context, auth AuthState) ([]briefing.HistoryItem, error) {
	if s.useRemote(auth) {
		items, err := s.remote.GetAll(ctx, auth)
		if err == nil {
			return items, nil
		}
		log.Printf("Remote fetch failed, falling back to local: %v", err)
	}

	items, err := s.local.GetAllHistoryItems()
	if err != nil {
		return nil, fmt.Errorf("loading history failed on every storage path: %w", err)
	}
	return items, nil
}

// Get returns one stored briefing by id, or nil when not found.
func (s *Store) Get(ctx context.Context, auth AuthState, id string) (*briefing.HistoryItem, error) {
	items, err := s.GetAll(ctx, auth)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// Delete removes one briefing, remote-preferred with local fallback.
func (s *Store) Delete(ctx context.Context, auth AuthState, id string) error {
	if s.useRemote(auth) {
		err := s.remote.Delete(ctx, auth, id)
		if err == nil {
			return nil
		}
		log.Printf("Remote delete failed, falling back to local: %v", err)
	}

	if err := s.local.DeleteHistoryItem(id); err != nil {
		return fmt.Errorf("deleting briefing failed on every storage path: %w", err)
	}
	return nil
}

// Clear removes all briefings. On the remote path the server's row-level
// policy limits the wipe to the session's own records.
func (s *Store) Clear(ctx context.Context, auth AuthState) error {
	if s.useRemote(auth) {
		err := s.remote.Clear(ctx, auth)
		if err == nil {
			return nil
		}
		log.Printf("Remote clear failed, falling back to local: %v", err)
	}

	if err := s.local.ClearHistory(); err != nil {
		return fmt.Errorf("clearing history failed on every storage path: %w", err)
	}
	return nil
}

// UpdatePin sets the pinned flag. The remote update is best-effort; the
// change is always mirrored into local storage so the offline cache stays
// usable whatever the remote outcome.
func (s *Store) UpdatePin(ctx context.Context, auth AuthState, id string, pinned bool) error {
	if s.useRemote(auth) {
		if err := s.remote.UpdatePinned(ctx, auth, id, pinned); err != nil {
			log.Printf("Remote pin update failed (continuing locally): %v", err)
		}
	}
	return s.local.UpdatePinned(id, pinned)
}

// UpdateTriageStatus sets the triage status, mirroring the pin semantics.
func (s *Store) UpdateTriageStatus(ctx context.Context, auth AuthState, id, status string) error {
	switch status {
	case briefing.TriageNew, briefing.TriageReview, briefing.TriageClosed:
	default:
		return fmt.Errorf("invalid triage status %q (want new, review or closed)", status)
	}

	if s.useRemote(auth) {
		if err := s.remote.UpdateTriageStatus(ctx, auth, id, status); err != nil {
			log.Printf("Remote triage update failed (continuing locally): %v", err)
		}
	}
	return s.local.UpdateTriageStatus(id, status)
}

// Local exposes the local database for read-only consumers such as the
// status command.
func (s *Store) Local() *database.DB {
	return s.local
}
