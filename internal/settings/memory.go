// Package settings persists named setting values: the render switches a
// user toggles and the per-URL content fingerprints written by the poller.
//
// Values are bool or string scalars. Both stores keep them YAML-encoded so
// that a bool true and the string "true" stay distinct, which the render
// gate depends on.
package settings

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/alnah/go-mdlive/internal/yamlutil"
)

// Sentinel errors for store operations.
var (
	ErrEmptyKey    = errors.New("setting key cannot be empty")
	ErrStoreClosed = errors.New("settings store is closed")
)

// Entry is one stored setting.
type Entry struct {
	Key   string
	Value any
}

// Memory is a process-local store. The zero value is not usable; call NewMemory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (m *Memory) Get(ctx context.Context, key string) (any, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	v, err := yamlutil.DecodeScalar(raw)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set stores value under key. Only bool and string values are accepted.
func (m *Memory) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := yamlutil.EncodeScalar(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.values[key] = raw
	m.mu.Unlock()
	return nil
}

// List returns every entry sorted by key.
func (m *Memory) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, 0, len(m.values))
	for k, raw := range m.values {
		v, err := yamlutil.DecodeScalar(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Close is a no-op; it exists so Memory and SQLite are interchangeable.
func (m *Memory) Close() error {
	return nil
}
