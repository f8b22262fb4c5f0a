// Package store persists reading progress between sessions. Writes are best
// effort: a failed Put is logged by the caller and never interrupts reading.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Progress records where a reader stopped in a sequence.
type Progress struct {
	SequenceID string    `json:"sequence_id"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Session identifies which reading session last wrote the record.
	Session string `json:"session"`
}

// NewSessionID returns a fresh identifier for one reading session.
func NewSessionID() string { return uuid.NewString() }

// ProgressStore is the persistence collaborator the scheduler writes through.
type ProgressStore interface {
	// Get returns the saved progress for a sequence, if any.
	Get(sequenceID string) (Progress, bool, error)
	// Put saves progress. Callers treat failures as log-and-continue.
	Put(p Progress) error
}

// FileStore keeps all progress records in one JSON file, keyed by sequence
// id. Reads load the file lazily; writes rewrite it via a temp-file rename
// so a crash mid-write never corrupts existing records.
type FileStore struct {
	path string

	mu      sync.Mutex
	records map[string]Progress
	loaded  bool
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the progress file location under the user data dir.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "yomu", "progress.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "yomu", "progress.json")
}

// Get implements ProgressStore.
func (s *FileStore) Get(sequenceID string) (Progress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return Progress{}, false, err
	}
	p, ok := s.records[sequenceID]
	return p, ok, nil
}

// Put implements ProgressStore.
func (s *FileStore) Put(p Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	s.records[p.SequenceID] = p
	return s.flushLocked()
}

func (s *FileStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	s.records = make(map[string]Progress)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("read progress file %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return fmt.Errorf("parse progress file %s: %w", s.path, err)
	}
	s.loaded = true
	return nil
}

func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize progress: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
