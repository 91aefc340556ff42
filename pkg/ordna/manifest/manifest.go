// Package manifest persists the undo ledger for organize runs.
//
// At most one manifest exists at a time: each run overwrites the
// previous one, and a successful undo deletes it. The manifest is the
// only state shared between an organize run and a later undo.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"

	"github.com/larsvincent/ordna/pkg/ordna/types"
)

// ErrNoManifest is returned when no manifest file exists.
var ErrNoManifest = errors.New("no manifest found")

// Manifest records the moves performed by a single organize run.
type Manifest struct {
	// ID uniquely identifies the run that produced this manifest.
	ID string `json:"id"`

	// Timestamp is when the run completed, in UTC.
	Timestamp time.Time `json:"timestamp"`

	// Version is the ordna version that wrote the manifest.
	Version string `json:"version"`

	// Root is the directory that was organized.
	Root string `json:"root"`

	// Moves lists the performed moves in execution order.
	Moves []types.MoveRecord `json:"moves"`
}

// New creates a manifest for a completed run.
func New(root, version string, moves []types.MoveRecord) *Manifest {
	return &Manifest{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Version:   version,
		Root:      root,
		Moves:     moves,
	}
}

// Empty reports whether the manifest records no moves.
func (m *Manifest) Empty() bool {
	return m == nil || len(m.Moves) == 0
}

// Store reads and writes the manifest at a fixed path.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store for the given manifest path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("manifest path cannot be empty")
	}
	return &Store{path: path}, nil
}

// Path returns the manifest file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes the manifest, replacing any previous one.
// The write is atomic: a temp file is written and renamed into place.
func (s *Store) Save(m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		// Cleanup temp file on rename failure
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Load reads the persisted manifest.
// It returns ErrNoManifest when no manifest file exists.
func (s *Store) Load() (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoManifest, s.path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Clear removes the manifest file. A missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove manifest: %w", err)
	}
	return nil
}

// DefaultPath returns the default manifest location under the XDG
// state directory.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "ordna", "manifest.json")
}
