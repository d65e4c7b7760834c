// Package storage is the local persistence layer: a namespaced JSON
// key-value store backed by a single file, mirroring the browser
// localStorage the storefront originally relied on. Writes are
// last-writer-wins and best-effort; persistence failures are logged and
// otherwise swallowed, so callers never fail because the disk did.
package storage

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Store is a JSON key-value store. Safe for concurrent use within one
// process; concurrent processes overwrite each other (accepted risk).
type Store struct {
	mu     sync.RWMutex
	path   string
	data   map[string]json.RawMessage
	logger *log.Logger
}

// Open loads the store file if it exists. A missing or unreadable file
// yields an empty store, never an error.
func Open(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{
		path:   path,
		data:   make(map[string]json.RawMessage),
		logger: logger,
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Printf("storage: read %s: %v", path, err)
		}
		return s
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Printf("storage: parse %s: %v", path, err)
		s.data = make(map[string]json.RawMessage)
	}
	return s
}

// Get unmarshals the value under key into v and reports whether it existed.
func (s *Store) Get(key string, v interface{}) bool {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Printf("storage: decode %s: %v", key, err)
		return false
	}
	return true
}

// Set stores v under key and persists.
func (s *Store) Set(key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("storage: encode %s: %v", key, err)
		return
	}
	s.mu.Lock()
	s.data[key] = raw
	s.persistLocked()
	s.mu.Unlock()
}

// Remove deletes key and persists.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.persistLocked()
	s.mu.Unlock()
}

// Keys returns every key with the given prefix.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.data)
	if err != nil {
		s.logger.Printf("storage: marshal store: %v", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.logger.Printf("storage: write %s: %v", s.path, err)
	}
}
