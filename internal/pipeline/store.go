package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caseworks/mysteryforge/internal/game"
)

// Store manages the working directory of a single run: the rolling state
// file, one snapshot per completed stage, and the images subdirectory.
// An interrupted run leaves everything here inspectable.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// ImagesDir returns the directory portrait PNGs are written into.
func (s *Store) ImagesDir() string {
	return filepath.Join(s.dir, "images")
}

func (s *Store) statePath() string {
	return filepath.Join(s.dir, "state.json")
}

func (s *Store) snapshotPath(seq int, stage string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%02d_%s.json", seq, stage))
}

// writeState encodes st and replaces path in one step. A kill mid-write
// must not leave a truncated state file behind, so the bytes go to a
// scratch file first and land via rename.
func (s *Store) writeState(path string, st *game.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	data = append(data, '\n')

	scratch, err := os.CreateTemp(s.dir, ".state-*")
	if err != nil {
		return fmt.Errorf("scratch file: %w", err)
	}
	name := scratch.Name()
	defer func() {
		if name != "" {
			os.Remove(name)
		}
	}()

	if _, err := scratch.Write(data); err != nil {
		scratch.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := scratch.Close(); err != nil {
		return fmt.Errorf("close scratch file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	name = "" // landed, nothing to clean up
	return nil
}

func (s *Store) readState(path string) (*game.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st game.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &st, nil
}

// SaveState writes the rolling state file.
func (s *Store) SaveState(st *game.State) error {
	return s.writeState(s.statePath(), st)
}

// LoadState reads the rolling state file back. Returns os.ErrNotExist
// wrapped if no run has been staged here yet.
func (s *Store) LoadState() (*game.State, error) {
	return s.readState(s.statePath())
}

// SaveSnapshot writes the full state as it stood after a stage completed.
// Snapshots are numbered in execution order, so a retried stage appears
// once per execution.
func (s *Store) SaveSnapshot(seq int, stage string, st *game.State) error {
	return s.writeState(s.snapshotPath(seq, stage), st)
}

// Snapshots lists snapshot file names in execution order.
func (s *Store) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.dir, err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == "state.json" || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the whole working directory.
func (s *Store) Remove() error {
	return os.RemoveAll(s.dir)
}
