package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/gg/gmap"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const storeVersion = 3

// storeFile is the on-disk layout of the memory store.
type storeFile struct {
	Version  int              `json:"version"`
	Memories map[string]Entry `json:"memories"`
}

// Store provides thread-safe persistence of memory entries to a JSON file.
type Store struct {
	path    string
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewStore creates a Store backed by the given file path.
// If the file does not exist it will be created on the first Save.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string]Entry),
	}
}

// Load reads persisted entries from disk. It is safe to call on a missing file.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // first run, nothing to load
		}
		return fmt.Errorf("read memory store: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var file storeFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("unmarshal memory store: %w", err)
	}

	s.entries = make(map[string]Entry, len(file.Memories))
	for id, e := range file.Memories {
		e.ID = id
		s.entries[id] = e
	}
	return nil
}

// Save writes all entries to disk atomically (tmp + rename).
func (s *Store) Save() error {
	s.mu.RLock()
	file := storeFile{
		Version:  storeVersion,
		Memories: gmap.Clone(s.entries),
	}
	s.mu.RUnlock()

	data, err := sonic.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal memory store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}

// Put inserts or replaces an entry. A missing ID is generated.
func (s *Store) Put(e Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e.ID == "" {
		e.ID = uuid.New().String()
		e.CreatedAt = now
	} else if prev, ok := s.entries[e.ID]; ok {
		e.CreatedAt = prev.CreatedAt
	} else if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.ModifiedAt = now

	s.entries[e.ID] = e
	return e
}

// Get returns an entry by ID.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Delete removes an entry by ID.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// All returns every stored entry keyed by ID.
func (s *Store) All() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gmap.Clone(s.entries)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// PruneExpiredOneTime removes one-time reminders whose datetime passed more
// than maxAge before now. Returns the number of entries removed.
func (s *Store) PruneExpiredOneTime(now time.Time, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-maxAge)
	removed := 0
	for id, e := range s.entries {
		if e.Kind != KindReminder || e.ReminderOptions == nil {
			continue
		}
		dt := e.ReminderOptions.DatetimeValue
		if dt != nil && dt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
