package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkweon/rollcall/internal/roster"
)

// ErrCorrupt marks a data file that exists but cannot be parsed. Callers
// decide whether to abort or start over; the store never silently resets
// a corrupt document.
var ErrCorrupt = errors.New("store: corrupt data file")

// FileStore keeps the process document in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

func (s *FileStore) Path() string { return s.path }

// Load reads the document. A missing or empty file yields the default
// bootstrap data with no error. Invalid JSON yields ErrCorrupt.
func (s *FileStore) Load() (roster.Data, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return roster.DefaultData(), nil
		}
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return roster.DefaultData(), nil
	}
	var d roster.Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if len(d) == 0 {
		return roster.DefaultData(), nil
	}
	normalize(d)
	return d, nil
}

// Save writes the full document atomically: marshal, write to a temp
// file in the same directory, fsync, rename over the target. A crash
// mid-write leaves either the old file or the new one, never a torn mix.
func (s *FileStore) Save(d roster.Data) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: rename to %s: %w", s.path, err)
	}
	return nil
}

// normalize fills nil slices left by older documents with missing
// optional fields so downstream code never hits nil.
func normalize(d roster.Data) {
	for _, rec := range d {
		if rec == nil {
			continue
		}
		if rec.Info.AtNames == nil {
			rec.Info.AtNames = []string{}
		}
		if rec.Unfinished == nil {
			rec.Unfinished = []string{}
		}
		if rec.Finished == nil {
			rec.Finished = []string{}
		}
		if rec.Change.NewFinished == nil {
			rec.Change.NewFinished = []string{}
		}
		if rec.Change.NewUnfinished == nil {
			rec.Change.NewUnfinished = []string{}
		}
	}
}
