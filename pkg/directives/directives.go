// Package directives stores operator-provided standing rules. Agents may
// read them freely but never write their content — only the orchestrator
// transitions a directive's status.
package directives

import (
	"fmt"

	"github.com/tickwright/tickctl/pkg/state"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusAcked    Status = "acked"
	StatusResolved Status = "resolved"
)

type Directive struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	Status         Status `json:"status"`
	CreatedSession int    `json:"created_session"`
	AckedSession   int    `json:"acked_session,omitempty"`
}

const doc = "directives.json"

type document struct {
	Directives []Directive `json:"directives"`
}

type Store struct {
	store *state.Store
}

func New(store *state.Store) *Store {
	return &Store{store: store}
}

func (s *Store) load() (document, error) {
	var d document
	if _, err := s.store.Read(doc, &d); err != nil {
		return document{}, err
	}
	return d, nil
}

func (s *Store) save(d document) error {
	return s.store.Write(doc, d)
}

// Add appends a new directive in the active status.
func (s *Store) Add(id, content string, createdSession int) error {
	d, err := s.load()
	if err != nil {
		return err
	}
	d.Directives = append(d.Directives, Directive{
		ID: id, Content: content, Status: StatusActive, CreatedSession: createdSession,
	})
	return s.save(d)
}

// Active returns every directive whose status is active or acked — the
// set still relevant to a running session's directives_active context
// section.
func (s *Store) Active() ([]Directive, error) {
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []Directive
	for _, directive := range d.Directives {
		if directive.Status == StatusActive || directive.Status == StatusAcked {
			out = append(out, directive)
		}
	}
	return out, nil
}

// Transition moves a directive to a new status. It is the only mutation
// the orchestrator performs on a directive — content itself is read-only
// once created.
func (s *Store) Transition(id string, status Status, ackedSession int) error {
	d, err := s.load()
	if err != nil {
		return err
	}
	for i, directive := range d.Directives {
		if directive.ID == id {
			directive.Status = status
			if status == StatusAcked {
				directive.AckedSession = ackedSession
			}
			d.Directives[i] = directive
			return s.save(d)
		}
	}
	return fmt.Errorf("directive %s not found", id)
}
