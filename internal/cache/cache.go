// Package cache is the path-keyed, atomically persisted store of final OCR
// results. Exactly one process is assumed to own a cache directory.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mizutori/pagelens/internal/ocr"
)

// FileName is the on-disk cache file within the cache directory.
const FileName = "ocr-cache.json"

// Entry is one cached page result set.
type Entry struct {
	Context string       `json:"context"`
	Data    []ocr.Result `json:"data"`
}

// PersistenceError reports a failure to write the cache file. Persistence
// failures are logged and self-heal on the next mutation; they are never
// surfaced to API callers.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist cache %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Key derives the cache key for a page URL: the request path with scheme,
// host, and query stripped, so one key covers a page image regardless of the
// host or port it was served from.
func Key(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Path
	}
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// Store is a concurrency-safe map of cache keys to entries with atomic
// file persistence. Reads never block each other; saves serialize through a
// separate lock so a slow disk never stalls lookups.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry

	// saveMu serializes file writes; TrySave uses it to coalesce
	// concurrent periodic saves instead of queueing them.
	saveMu sync.Mutex

	path   string
	logger *slog.Logger
}

// New creates a Store persisting to dir/ocr-cache.json and loads any
// existing file. A missing or corrupt file is treated as an empty cache.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		entries: make(map[string]Entry),
		path:    filepath.Join(dir, FileName),
		logger:  logger,
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cache file unreadable, starting empty", "path", s.path, "error", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		logger.Warn("cache file corrupt, starting empty", "path", s.path, "error", err)
		s.entries = make(map[string]Entry)
		return s
	}
	logger.Info("cache loaded", "path", s.path, "entries", len(s.entries))
	return s
}

// Get returns the cached entry for key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Has reports whether key is cached.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Insert adds or replaces an entry without persisting. Callers doing bulk
// work persist periodically via TrySave and force a Save when done.
func (s *Store) Insert(key string, e Entry) {
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Put adds or replaces an entry and persists the cache.
func (s *Store) Put(key string, e Entry) error {
	s.Insert(key, e)
	return s.Save()
}

// Purge removes all entries and persists the now-empty cache.
func (s *Store) Purge() error {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
	return s.Save()
}

// Export returns a snapshot of the full cache map.
func (s *Store) Export() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Import merges entries, adding only keys absent locally (first writer
// wins). It persists when anything was added and returns the added count.
func (s *Store) Import(entries map[string]Entry) (int, error) {
	added := 0
	s.mu.Lock()
	for k, v := range entries {
		if _, exists := s.entries[k]; !exists {
			s.entries[k] = v
			added++
		}
	}
	s.mu.Unlock()

	if added == 0 {
		return 0, nil
	}
	return added, s.Save()
}

// Save atomically persists the cache: the full map is serialized to a temp
// file in the cache directory, fsynced, and renamed over the cache file.
// The on-disk file is always either the pre- or post-mutation state.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.save()
}

// TrySave persists the cache unless another save is already running, in
// which case it returns immediately. Used for periodic saves during bulk
// jobs to avoid I/O pile-up.
func (s *Store) TrySave() {
	if !s.saveMu.TryLock() {
		return
	}
	defer s.saveMu.Unlock()
	if err := s.save(); err != nil {
		s.logger.Warn("periodic cache save failed", "error", err)
	}
}

func (s *Store) save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Path: s.path, Err: err}
	}
	return nil
}
