package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	stateFileName = "state.json"
	stateVersion  = 1
	corruptSuffix = ".corrupt"
)

// state represents the on-disk state file.
type state struct {
	Version   int                        `json:"version"`
	UpdatedAt time.Time                  `json:"updated_at"`
	Entries   map[string]json.RawMessage `json:"entries"`
}

// FileStore keeps all entries in a single JSON file on the local filesystem.
type FileStore struct {
	mu      sync.Mutex
	baseDir string
}

var _ Store = (*FileStore)(nil)

// DefaultDir returns ~/.recruitify, the default state directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".recruitify"), nil
}

// NewFileStore creates a new file backed store.
// If baseDir is empty, uses ~/.recruitify/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}

	// Create directory with 0700 permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	store := &FileStore{baseDir: baseDir}

	if err := store.ensureState(); err != nil {
		return nil, err
	}

	log.Debug().Str("baseDir", baseDir).Msg("local store initialized")

	return store, nil
}

// Dir returns the directory holding the state file.
func (s *FileStore) Dir() string {
	return s.baseDir
}

// Get returns the raw value stored under key.
func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadState()
	if err != nil {
		return nil, err
	}

	value, ok := st.Entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return []byte(value), nil
}

// Set stores value under key. Values must be valid JSON.
func (s *FileStore) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadState()
	if err != nil {
		return err
	}

	st.Entries[key] = json.RawMessage(value)

	if err := s.saveState(st); err != nil {
		return err
	}

	log.Debug().Str("key", key).Msg("stored value")

	return nil
}

// Delete removes key from the state file.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadState()
	if err != nil {
		return err
	}

	if _, ok := st.Entries[key]; !ok {
		return nil
	}

	delete(st.Entries, key)

	if err := s.saveState(st); err != nil {
		return err
	}

	log.Debug().Str("key", key).Msg("deleted value")

	return nil
}

// ensureState creates an empty state file if it doesn't exist.
func (s *FileStore) ensureState() error {
	statePath := filepath.Join(s.baseDir, stateFileName)

	if _, err := os.Stat(statePath); err == nil {
		return nil
	}

	return s.saveState(&state{
		Version: stateVersion,
		Entries: make(map[string]json.RawMessage),
	})
}

// loadState reads the state file.
func (s *FileStore) loadState() (*state, error) {
	statePath := filepath.Join(s.baseDir, stateFileName)

	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &state{Version: stateVersion, Entries: make(map[string]json.RawMessage)}, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		// start over; the next save rewrites the file
		corruptPath := statePath + corruptSuffix
		if rerr := os.Rename(statePath, corruptPath); rerr != nil {
			log.Warn().Err(rerr).Str("path", statePath).Msg("failed to move aside corrupt state file")
		}
		log.Warn().Err(err).Str("path", corruptPath).Msg("discarding corrupt state file")
		return &state{Version: stateVersion, Entries: make(map[string]json.RawMessage)}, nil
	}

	if st.Entries == nil {
		st.Entries = make(map[string]json.RawMessage)
	}

	return &st, nil
}

// saveState writes the state file atomically.
func (s *FileStore) saveState(st *state) error {
	st.Version = stateVersion
	st.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write to temp file first
	statePath := filepath.Join(s.baseDir, stateFileName)
	tempPath := statePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, statePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}
