package workqueue

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tickwright/tickctl/pkg/state"
)

// Queue is the work queue backed by a state.Store document. It holds no
// in-memory state between calls — every operation loads, mutates, and
// writes back through the store, so a crash mid-tick never leaves the
// queue half-updated.
type Queue struct {
	store *state.Store
}

// New returns a Queue backed by store.
func New(store *state.Store) *Queue {
	return &Queue{store: store}
}

func (q *Queue) load() (queueDocument, error) {
	var doc queueDocument
	if _, err := q.store.Read(queueDoc, &doc); err != nil {
		return queueDocument{}, err
	}
	return doc, nil
}

func (q *Queue) save(doc queueDocument) error {
	return q.store.Write(queueDoc, doc)
}

// List returns every work item, in stored order.
func (q *Queue) List() ([]WorkItem, error) {
	doc, err := q.load()
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// Add inserts item, assigning it a fresh id if item.ID is empty.
func (q *Queue) Add(item WorkItem) (WorkItem, error) {
	doc, err := q.load()
	if err != nil {
		return WorkItem{}, err
	}

	if item.ID == "" {
		item.ID = nextID(doc.Items)
	}
	if item.Status == "" {
		item.Status = StatusPending
	}

	doc.Items = append(doc.Items, item)
	if err := q.save(doc); err != nil {
		return WorkItem{}, err
	}
	return item, nil
}

// Update applies patch to the item with the given id and persists the
// result. It rejects transitions that would introduce a dependency cycle
// or move a done item back to pending.
func (q *Queue) Update(id string, patch Patch) (WorkItem, error) {
	doc, err := q.load()
	if err != nil {
		return WorkItem{}, err
	}

	idx := indexOf(doc.Items, id)
	if idx < 0 {
		return WorkItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	updated := doc.Items[idx]

	if patch.Status != nil {
		if updated.Status == StatusDone && *patch.Status == StatusPending {
			return WorkItem{}, fmt.Errorf("%w: item %s is done, cannot move back to pending", ErrInvalidTransition, id)
		}
		updated.Status = *patch.Status
	}
	if patch.Priority != nil {
		updated.Priority = *patch.Priority
	}
	if patch.Complexity != nil {
		updated.Complexity = *patch.Complexity
	}
	if patch.Tags != nil {
		updated.Tags = patch.Tags
	}
	if patch.Deps != nil {
		updated.Deps = patch.Deps
	}
	if patch.AddProgress != nil {
		updated.ProgressNotes = append(updated.ProgressNotes, *patch.AddProgress)
	}

	candidate := doc.Items
	candidate[idx] = updated
	if err := detectCycle(candidate); err != nil {
		return WorkItem{}, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	doc.Items[idx] = updated
	if err := q.save(doc); err != nil {
		return WorkItem{}, err
	}
	return updated, nil
}

func indexOf(items []WorkItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// nextID returns "wq-<N>" where N is one more than the largest existing
// numeric suffix; ids are never reused even after retirement.
func nextID(items []WorkItem) string {
	max := 0
	for _, it := range items {
		n, ok := numericSuffix(it.ID)
		if ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("wq-%d", max+1)
}

func numericSuffix(id string) (int, bool) {
	const prefix = "wq-"
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// detectCycle reports an error if items' deps graph contains a cycle.
func detectCycle(items []WorkItem) error {
	byID := make(map[string]WorkItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(items))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("dependency cycle: %s", strings.Join(append(path, id), " -> "))
		}
		color[id] = gray
		for _, dep := range byID[id].Deps {
			if _, ok := byID[dep]; !ok {
				continue // dangling dep reference, not this function's concern
			}
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	sort.Strings(ids) // deterministic traversal order for reproducible error messages
	for _, id := range ids {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}
