// Package panelstate persists per-panel state (position, size, maximized flag
// and any custom keys a panel's content stores) and hands each mounted panel a
// Handle for reading and updating it.
//
// Storage is best-effort. Read failures and malformed records are treated as
// "nothing stored", write failures are logged, and the panel keeps working
// from memory either way.
package panelstate

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"estatedash/internal/jsonutil"
	"estatedash/internal/kv"
)

// Reserved state keys.
const (
	KeyPosition  = "position"
	KeySize      = "size"
	KeyMaximized = "isMaximized"
)

const globalPrefix = "global:panel:"

// Record is the persisted form of a panel's state.
type Record struct {
	ID          string         `json:"id"`
	ContentType string         `json:"contentType"`
	State       map[string]any `json:"state"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Version     int            `json:"version"`
}

// Store reads and writes panel state records.
// Workspace-scoped records are namespaced by workspace; global records are
// shared by every workspace using the same kv.Store.
type Store struct {
	kv        kv.Store
	workspace string
	now       func() time.Time
}

// NewStore creates a Store for the named workspace on top of store.
func NewStore(store kv.Store, workspace string) *Store {
	if workspace == "" {
		workspace = "default"
	}
	return &Store{kv: store, workspace: workspace, now: time.Now}
}

func (s *Store) localPrefix() string {
	return "workspace:" + s.workspace + ":panel:"
}

// Key returns the storage key for a panel in the given scope.
func (s *Store) Key(panelID string, global bool) string {
	if global {
		return globalPrefix + panelID
	}
	return s.localPrefix() + panelID
}

// Load returns the stored record for panelID, or false when there is none.
// Storage errors and malformed records are logged and reported as absent.
func (s *Store) Load(panelID string, global bool) (*Record, bool) {
	if s == nil || s.kv == nil {
		return nil, false
	}
	key := s.Key(panelID, global)
	data, ok, err := s.kv.Get(key)
	if err != nil {
		log.Printf("panelstate.Load: failed to read %q: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var rec Record
	if err := jsonutil.UnmarshalWithContext(data, &rec, "decode panel record"); err != nil {
		log.Printf("panelstate.Load: ignoring malformed record %q: %v", key, err)
		return nil, false
	}
	if rec.State == nil {
		rec.State = map[string]any{}
	}
	return &rec, true
}

// Save writes state for panelID, bumping the record version.
// It returns an error for callers that want to report it; Handle ignores it.
func (s *Store) Save(panelID, contentType string, state map[string]any, global bool) error {
	if s == nil || s.kv == nil {
		return nil
	}
	version := 1
	if prev, ok := s.Load(panelID, global); ok {
		version = prev.Version + 1
	}
	rec := Record{
		ID:          panelID,
		ContentType: contentType,
		State:       state,
		LastUpdated: s.now().UTC(),
		Version:     version,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("panelstate.Save: failed to encode %q: %v", panelID, err)
		return fmt.Errorf("encode panel %q: %w", panelID, err)
	}
	key := s.Key(panelID, global)
	if err := s.kv.Set(key, data); err != nil {
		log.Printf("panelstate.Save: failed to write %q: %v", key, err)
		return fmt.Errorf("write panel %q: %w", panelID, err)
	}
	return nil
}

// Delete removes the stored record for panelID.
func (s *Store) Delete(panelID string, global bool) error {
	if s == nil || s.kv == nil {
		return nil
	}
	key := s.Key(panelID, global)
	if err := s.kv.Delete(key); err != nil {
		log.Printf("panelstate.Delete: failed to delete %q: %v", key, err)
		return fmt.Errorf("delete panel %q: %w", panelID, err)
	}
	return nil
}

// PanelIDs lists panels with a stored record in the given scope.
func (s *Store) PanelIDs(global bool) []string {
	if s == nil || s.kv == nil {
		return nil
	}
	prefix := s.localPrefix()
	if global {
		prefix = globalPrefix
	}
	keys, err := s.kv.Keys(prefix)
	if err != nil {
		log.Printf("panelstate.PanelIDs: failed to list %q: %v", prefix, err)
		return nil
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids
}
