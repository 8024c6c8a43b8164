package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// CSV writes two files per state: a raw file with the source's own column
// names and a normalized file with canonical names. Columns are fixed by
// the first entry seen for a state; later entries fill missing columns
// with blanks and drop columns outside the set.
type CSV struct {
	dir string

	mu     sync.Mutex
	states map[string]*csvPair
}

type csvPair struct {
	raw        *csvStream
	normalized *csvStream
}

type csvStream struct {
	file    *os.File
	writer  *csv.Writer
	columns []string
}

// NewCSV creates a CSV sink rooted at dir.
func NewCSV(dir string) (*CSV, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &CSV{dir: dir, states: make(map[string]*csvPair)}, nil
}

// Write appends the entry to its state's raw and normalized files.
func (s *CSV) Write(_ context.Context, entry warn.Entry) error {
	if entry.StateAbbrev == "" {
		return fmt.Errorf("entry has no state abbreviation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pair, err := s.pair(entry)
	if err != nil {
		return err
	}
	if err := pair.raw.append(rowValues(entry.Fields, pair.raw.columns)); err != nil {
		return fmt.Errorf("append raw row for %s: %w", entry.StateAbbrev, err)
	}
	if err := pair.normalized.append(rowValues(entry.NormalizedFields, pair.normalized.columns)); err != nil {
		return fmt.Errorf("append normalized row for %s: %w", entry.StateAbbrev, err)
	}
	return nil
}

// Close flushes and closes every open file.
func (s *CSV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for abbrev, pair := range s.states {
		if err := pair.raw.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s raw: %w", abbrev, err))
		}
		if err := pair.normalized.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s normalized: %w", abbrev, err))
		}
	}
	s.states = make(map[string]*csvPair)
	return errors.Join(errs...)
}

func (s *CSV) pair(entry warn.Entry) (*csvPair, error) {
	if pair, ok := s.states[entry.StateAbbrev]; ok {
		return pair, nil
	}

	raw, err := s.open(entry.StateAbbrev, "raw", sortedKeys(entry.Fields))
	if err != nil {
		return nil, err
	}
	normalized, err := s.open(entry.StateAbbrev, "normalized", sortedKeys(entry.NormalizedFields))
	if err != nil {
		_ = raw.close()
		return nil, err
	}

	pair := &csvPair{raw: raw, normalized: normalized}
	s.states[entry.StateAbbrev] = pair
	return pair, nil
}

func (s *CSV) open(abbrev, kind string, columns []string) (*csvStream, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_WARN_Notices_%s.csv", abbrev, kind))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	return &csvStream{file: f, writer: w, columns: columns}, nil
}

func (st *csvStream) append(values []string) error {
	return st.writer.Write(values)
}

func (st *csvStream) close() error {
	st.writer.Flush()
	if err := st.writer.Error(); err != nil {
		_ = st.file.Close()
		return err
	}
	return st.file.Close()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rowValues(fields map[string]string, columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = fields[col]
	}
	return out
}
