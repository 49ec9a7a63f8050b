// Package kv provides the durable key-value storage used by the workspace:
// panel state records, active filters, filter presets and saved layouts.
//
// Three backends satisfy Store:
//   - Memory: process-local map, used by tests and non-persistent workspaces
//   - FileStore: one JSON document per key under a data directory
//   - SQLiteStore: a single kv table in a SQLite database, migrated with goose
//
// Callers treat every error as non-fatal; see panelstate and filters.
package kv

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrUnavailable is returned by Failing for every call.
var ErrUnavailable = errors.New("kv: storage unavailable")

// Store is a durable string-keyed byte store.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	// Set writes value under key, replacing any existing value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys lists stored keys with the given prefix in lexical order.
	Keys(prefix string) ([]string, error)
}

// Memory is an in-process Store. The zero value is ready to use.
// Safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements Store.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys implements Store.
func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Failing is a Store whose every operation fails with ErrUnavailable.
// It stands in for a full disk or a locked database in tests.
type Failing struct{}

var _ Store = Failing{}

func (Failing) Get(string) ([]byte, bool, error) { return nil, false, ErrUnavailable }
func (Failing) Set(string, []byte) error         { return ErrUnavailable }
func (Failing) Delete(string) error              { return ErrUnavailable }
func (Failing) Keys(string) ([]string, error)    { return nil, ErrUnavailable }
