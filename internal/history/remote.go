package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brevita-ai/brevita/internal/briefing"
)

// RemoteConfig describes the remote storage endpoint. Zero value means
// remote storage is not configured.
type RemoteConfig struct {
	URL     string
	AnonKey string
}

// Configured reports whether remote storage can be used at all.
func (c RemoteConfig) Configured() bool {
	return c.URL != "" && c.AnonKey != ""
}

// AuthState is the session capability passed into every store call. The
// store never looks up session state globally.
type AuthState struct {
	UserID      string
	AccessToken string
}

// Authenticated reports whether a usable session exists.
func (a AuthState) Authenticated() bool {
	return a.UserID != "" && a.AccessToken != ""
}

// RemoteStore talks to the hosted briefings table over its REST interface.
// Row access is scoped to the session's user by the server's row-level
// policy, not by client-side filtering.
type RemoteStore struct {
	cfg    RemoteConfig
	client *http.Client
}

// NewRemoteStore creates a remote store client.
func NewRemoteStore(cfg RemoteConfig) *RemoteStore {
	return &RemoteStore{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// remoteRow is the briefings table row shape.
type remoteRow struct {
	ID           string            `json:"id,omitempty"`
	UserID       string            `json:"user_id,omitempty"`
	Data         briefing.Briefing `json:"data"`
	CreatedAt    string            `json:"created_at,omitempty"`
	IsPinned     bool              `json:"is_pinned"`
	TriageStatus *string           `json:"triage_status,omitempty"`
}

func (row *remoteRow) toHistoryItem() briefing.HistoryItem {
	item := briefing.HistoryItem{
		ID:        row.ID,
		Timestamp: parseCreatedAt(row.CreatedAt),
		Data:      row.Data,
		Pinned:    row.IsPinned,
	}
	if row.TriageStatus != nil {
		item.TriageStatus = *row.TriageStatus
	}
	return item
}

func parseCreatedAt(s string) int64 {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// Insert stores a briefing remotely and returns the server-assigned item.
func (r *RemoteStore) Insert(ctx context.Context, auth AuthState, b *briefing.Briefing) (*briefing.HistoryItem, error) {
	body := remoteRow{UserID: auth.UserID, Data: *b}

	var rows []remoteRow
	if err := r.do(ctx, auth, http.MethodPost, "/rest/v1/briefings", body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("remote insert returned no row")
	}

	item := rows[0].toHistoryItem()
	return &item, nil
}

// GetAll returns the session's briefings, newest first.
func (r *RemoteStore) GetAll(ctx context.Context, auth AuthState) ([]briefing.HistoryItem, error) {
	var rows []remoteRow
	if err := r.do(ctx, auth, http.MethodGet, "/rest/v1/briefings?select=*&order=created_at.desc", nil, &rows); err != nil {
		return nil, err
	}

	items := make([]briefing.HistoryItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toHistoryItem())
	}
	return items, nil
}

// Delete removes one briefing.
func (r *RemoteStore) Delete(ctx context.Context, auth AuthState, id string) error {
	return r.do(ctx, auth, http.MethodDelete, "/rest/v1/briefings?id=eq."+id, nil, nil)
}

// Clear removes the session's briefings. The filter is a REST requirement
// for bulk deletes; row scope comes from the server's row-level policy.
func (r *RemoteStore) Clear(ctx context.Context, auth AuthState) error {
	return r.do(ctx, auth, http.MethodDelete, "/rest/v1/briefings?id=not.is.null", nil, nil)
}

// UpdatePinned sets the pinned flag on one briefing.
func (r *RemoteStore) UpdatePinned(ctx context.Context, auth AuthState, id string, pinned bool) error {
	return r.do(ctx, auth, http.MethodPatch, "/rest/v1/briefings?id=eq."+id,
		map[string]any{"is_pinned": pinned}, nil)
}

// UpdateTriageStatus sets the triage status on one briefing.
func (r *RemoteStore) UpdateTriageStatus(ctx context.Context, auth AuthState, id, status string) error {
	return r.do(ctx, auth, http.MethodPatch, "/rest/v1/briefings?id=eq."+id,
		map[string]any{"triage_status": status}, nil)
}

func (r *RemoteStore) do(ctx context.Context, auth AuthState, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(r.cfg.URL, "/")+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", r.cfg.AnonKey)
	req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote storage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("remote storage returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding remote response: %w", err)
		}
	}
	return nil
}
