// Package workqueue implements the prioritized, dependency-aware task
// queue: work items ranked for selection, an idea pool that backfills the
// queue when it runs low, and the todo-ingestion and dedup housekeeping
// that keep both lists sane.
package workqueue

import "time"

// Status is a work item's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusRetired    Status = "retired"
)

// Complexity is a coarse sizing used by the complexity gate in SelectNext.
type Complexity string

const (
	ComplexitySmall  Complexity = "S"
	ComplexityMedium Complexity = "M"
	ComplexityLarge  Complexity = "L"
)

// BudgetHint narrows SelectNext's complexity preference.
type BudgetHint string

const (
	BudgetTight  BudgetHint = "tight"
	BudgetNormal BudgetHint = "normal"
)

// ProgressNote is a free-text note attached to a work item, tagged with
// the session number it was written in.
type ProgressNote struct {
	Session int    `json:"session"`
	Text    string `json:"text"`
}

// WorkItem is a single unit of queued work.
type WorkItem struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Status         Status         `json:"status"`
	Priority       int            `json:"priority"`
	Complexity     Complexity     `json:"complexity"`
	Tags           []string       `json:"tags,omitempty"`
	Source         string         `json:"source,omitempty"`
	Deps           []string       `json:"deps,omitempty"`
	CreatedSession int            `json:"created_session"`
	ProgressNotes  []ProgressNote `json:"progress_notes,omitempty"`
}

// Idea is a free-text candidate in the idea pool, promoted into a WorkItem
// once the queue runs low.
type Idea struct {
	Title          string    `json:"title"`
	CreatedSession int       `json:"created_session"`
	CreatedAt      time.Time `json:"created_at"`
}

// DedupReport names the items removed by Dedup. It does not record which
// survivor each duplicate collapsed into.
type DedupReport struct {
	RemovedIDs []string `json:"removed_ids"`
}

// PromoteResult names the ideas promoted into work items this tick.
type PromoteResult struct {
	PromotedItems []WorkItem `json:"promoted_items"`
}

// IngestResult reports how ingest_todos handled each input line.
type IngestResult struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped_duplicates"`
}

// Patch describes a partial update to a work item; nil fields are left
// untouched.
type Patch struct {
	Status      *Status
	Priority    *int
	Complexity  *Complexity
	Tags        []string
	Deps        []string
	AddProgress *ProgressNote
}

const queueDoc = "work_queue.json"
const ideaPoolDoc = "idea_pool.json"

type queueDocument struct {
	Items []WorkItem `json:"items"`
}

type ideaPoolDocument struct {
	Ideas []Idea `json:"ideas"`
}
