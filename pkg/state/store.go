// Package state provides atomic, crash-safe read/write access to the
// orchestrator's named JSON documents under a state directory, plus a
// directory-scoped advisory lock so only one tick runs at a time.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// ErrStateIO wraps any failure to read or write a state document — the
// StateIOError taxonomy entry from the orchestrator's error design.
var ErrStateIO = errors.New("state I/O error")

// Store is a single orchestrator's view of its state directory. The zero
// value is not usable; construct with New.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating dir if it does not exist.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating state dir %s: %v", ErrStateIO, dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root state directory.
func (s *Store) Dir() string { return s.dir }

// path resolves a document name to its absolute path, rejecting traversal
// outside the state directory.
func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.Clean(string(filepath.Separator)+name))
}

// Read decodes the named JSON document into v. A missing document is not
// an error: v is left untouched and (false, nil) is returned so callers
// can apply their own defaults.
func (s *Store) Read(name string, v any) (found bool, err error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: reading %s: %v", ErrStateIO, name, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: decoding %s: %v", ErrStateIO, name, err)
	}
	return true, nil
}

// Write serializes v and atomically replaces the named document: write to
// a sibling temp file, fsync, rename. Crash-safe — a reader never observes
// a partially written document.
func (s *Store) Write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrStateIO, name, err)
	}
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: preparing directory for %s: %v", ErrStateIO, name, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStateIO, name, err)
	}
	return nil
}

// WriteRaw atomically replaces the named document with data verbatim —
// the same write-temp/fsync/rename path Write uses, but for callers that
// already have their own serialized bytes (e.g. a rewritten append-only
// log) rather than a value to JSON-encode.
func (s *Store) WriteRaw(name string, data []byte) error {
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: preparing directory for %s: %v", ErrStateIO, name, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStateIO, name, err)
	}
	return nil
}

// AppendLine appends a single line (a newline is added) to the named
// append-only log, rotating it to its tail maxLines entries first if it
// would otherwise exceed maxLines. maxLines <= 0 disables rotation.
func (s *Store) AppendLine(name, line string, maxLines int) error {
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: preparing directory for %s: %v", ErrStateIO, name, err)
	}

	if maxLines > 0 {
		if err := s.rotateIfNeeded(path, maxLines); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrStateIO, name, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: appending to %s: %v", ErrStateIO, name, err)
	}
	return f.Sync()
}

// rotateIfNeeded keeps only the tail maxLines-1 lines of path (making room
// for the line about to be appended), rewritten atomically.
func (s *Store) rotateIfNeeded(path string, maxLines int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: reading %s for rotation: %v", ErrStateIO, path, err)
	}

	lines := splitNonEmptyLines(data)
	if len(lines) < maxLines {
		return nil
	}

	keep := lines[len(lines)-(maxLines-1):]
	var buf []byte
	for _, l := range keep {
		buf = append(buf, l...)
		buf = append(buf, '\n')
	}
	if err := renameio.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("%w: rotating %s: %v", ErrStateIO, path, err)
	}
	return nil
}

func splitNonEmptyLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, string(data[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

// ReadLines returns every line of an append-only log, oldest first.
func (s *Store) ReadLines(name string) ([]string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStateIO, name, err)
	}
	return splitNonEmptyLines(data), nil
}
