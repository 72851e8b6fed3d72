// Package intel stores the short structured notes an Engage session
// produces, consumed by the work queue as candidate ideas to
// auto-promote.
package intel

import (
	"encoding/json"

	"github.com/tickwright/tickctl/pkg/state"
)

type Entry struct {
	Session int    `json:"session"`
	Summary string `json:"summary"`
	Detail  string `json:"detail,omitempty"`
}

const (
	doc        = "intel.jsonl"
	archiveDoc = "intel-archive.json"
)

type Store struct {
	store *state.Store
}

func New(store *state.Store) *Store {
	return &Store{store: store}
}

// Record appends a new intel entry. maxLines bounds how much history
// survives state's line-count rotation (distinct from the retention
// sweeper, which trims intel-archive.json by entry count).
func (s *Store) Record(entry Entry, maxLines int) error {
	line, err := encode(entry)
	if err != nil {
		return err
	}
	return s.store.AppendLine(doc, line, maxLines)
}

// Recent returns every stored intel entry, oldest first.
func (s *Store) Recent() ([]Entry, error) {
	lines, err := s.store.ReadLines(doc)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entry, err := decode(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Archive moves entries out of the pending log into intel-archive.json
// (the document the retention sweeper trims by count) and clears the
// pending log. Called once the work queue has turned each entry into an
// idea, so a drained entry is never promoted twice.
func (s *Store) Archive(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	var archived []json.RawMessage
	if _, err := s.store.Read(archiveDoc, &archived); err != nil {
		return err
	}
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		archived = append(archived, data)
	}
	if err := s.store.Write(archiveDoc, archived); err != nil {
		return err
	}
	return s.store.WriteRaw(doc, nil)
}
