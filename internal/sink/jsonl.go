// Package sink writes output entries to per-state streams.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// JSONL appends entries to one JSON Lines file per state, named
// <ABBREV>_WARN_Notices.jsonl under the output directory. Files are
// opened lazily and append-only, so repeated runs accumulate.
type JSONL struct {
	dir string

	mu    sync.Mutex
	files map[string]*os.File
}

// NewJSONL creates a JSONL sink rooted at dir.
func NewJSONL(dir string) (*JSONL, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &JSONL{dir: dir, files: make(map[string]*os.File)}, nil
}

// Write appends the entry as one JSON line to its state's file.
func (s *JSONL) Write(_ context.Context, entry warn.Entry) error {
	if entry.StateAbbrev == "" {
		return fmt.Errorf("entry has no state abbreviation")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.file(entry.StateAbbrev)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append entry for %s: %w", entry.StateAbbrev, err)
	}
	return nil
}

// Close flushes and closes every open state file.
func (s *JSONL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for abbrev, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", abbrev, err))
		}
	}
	s.files = make(map[string]*os.File)
	return errors.Join(errs...)
}

func (s *JSONL) file(abbrev string) (*os.File, error) {
	if f, ok := s.files[abbrev]; ok {
		return f, nil
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s_WARN_Notices.jsonl", abbrev))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s.files[abbrev] = f
	return f, nil
}
