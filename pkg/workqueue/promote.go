package workqueue

import (
	"strings"
	"time"
)

const autoPromoteSource = "idea-pool-auto"

// defaultLowWaterPromote is how many ideas to promote when the queue is
// entirely empty of pending work.
const defaultLowWaterPromote = 3

// defaultPromoteBuffer is subtracted from the idea pool size before
// promoting, when the queue is not empty — see AutoPromote.
const defaultPromoteBuffer = 3

func (q *Queue) loadIdeas() (ideaPoolDocument, error) {
	var doc ideaPoolDocument
	if _, err := q.store.Read(ideaPoolDoc, &doc); err != nil {
		return ideaPoolDocument{}, err
	}
	return doc, nil
}

func (q *Queue) saveIdeas(doc ideaPoolDocument) error {
	return q.store.Write(ideaPoolDoc, doc)
}

// AddIdea appends an idea directly to the pool, bypassing ingest_todos'
// title-based dedup — used when a caller already has a structured Idea
// (e.g. an intel entry) rather than a raw todo line.
func (q *Queue) AddIdea(idea Idea) error {
	doc, err := q.loadIdeas()
	if err != nil {
		return err
	}
	doc.Ideas = append(doc.Ideas, idea)
	return q.saveIdeas(doc)
}

// AutoPromote promotes ideas from the idea pool into pending work items
// when the queue's pending count is low: an empty queue promotes up to
// lowWater ideas; a non-empty queue promotes max(0, len(ideas) - buffer).
// Promoted items get source="idea-pool-auto" and title equal to the
// idea's title.
func (q *Queue) AutoPromote(lowWater, buffer int) (PromoteResult, error) {
	queueDoc, err := q.load()
	if err != nil {
		return PromoteResult{}, err
	}
	ideasDoc, err := q.loadIdeas()
	if err != nil {
		return PromoteResult{}, err
	}

	pending := 0
	for _, it := range queueDoc.Items {
		if it.Status == StatusPending {
			pending++
		}
	}

	var promoteCount int
	if pending == 0 {
		promoteCount = lowWater
		if promoteCount > len(ideasDoc.Ideas) {
			promoteCount = len(ideasDoc.Ideas)
		}
	} else {
		promoteCount = len(ideasDoc.Ideas) - buffer
		if promoteCount < 0 {
			promoteCount = 0
		}
		if promoteCount > len(ideasDoc.Ideas) {
			promoteCount = len(ideasDoc.Ideas)
		}
	}

	if promoteCount == 0 {
		return PromoteResult{}, nil
	}

	toPromote := ideasDoc.Ideas[:promoteCount]
	remaining := ideasDoc.Ideas[promoteCount:]

	var result PromoteResult
	for _, idea := range toPromote {
		item := WorkItem{
			ID:             nextID(queueDoc.Items),
			Title:          idea.Title,
			Status:         StatusPending,
			Priority:       defaultIdeaPriority,
			Complexity:     ComplexityMedium,
			Source:         autoPromoteSource,
			CreatedSession: idea.CreatedSession,
		}
		queueDoc.Items = append(queueDoc.Items, item)
		result.PromotedItems = append(result.PromotedItems, item)
	}

	ideasDoc.Ideas = remaining
	if err := q.save(queueDoc); err != nil {
		return PromoteResult{}, err
	}
	if err := q.saveIdeas(ideasDoc); err != nil {
		return PromoteResult{}, err
	}
	return result, nil
}

// defaultIdeaPriority places auto-promoted items behind anything an
// operator hand-entered with an explicit low (urgent) priority number.
const defaultIdeaPriority = 50

// Dedup compares all items, whatever their status, by a normalized title prefix
// (first prefixWords words, lowercased) and removes later-created
// duplicates, keeping the earliest. It reports the removed ids.
func (q *Queue) Dedup(prefixWords int) (DedupReport, error) {
	doc, err := q.load()
	if err != nil {
		return DedupReport{}, err
	}

	seen := make(map[string]string) // normalized prefix -> surviving id
	var kept []WorkItem
	var removed []string

	for _, it := range doc.Items {
		key := normalizedPrefix(it.Title, prefixWords)
		if survivorID, dup := seen[key]; dup && it.ID != survivorID {
			removed = append(removed, it.ID)
			continue
		}
		seen[key] = it.ID
		kept = append(kept, it)
	}

	doc.Items = kept
	if err := q.save(doc); err != nil {
		return DedupReport{}, err
	}
	return DedupReport{RemovedIDs: removed}, nil
}

func normalizedPrefix(title string, words int) string {
	fields := strings.Fields(strings.ToLower(title))
	if len(fields) > words {
		fields = fields[:words]
	}
	return strings.Join(fields, " ")
}

// IngestTodos treats each line as a candidate idea title, skipping any
// that duplicate (by normalized prefix) an existing work item or idea
// pool entry, and appends the rest to the idea pool.
func (q *Queue) IngestTodos(lines []string, prefixWords, createdSession int) (IngestResult, error) {
	queueDoc, err := q.load()
	if err != nil {
		return IngestResult{}, err
	}
	ideasDoc, err := q.loadIdeas()
	if err != nil {
		return IngestResult{}, err
	}

	existing := make(map[string]bool)
	for _, it := range queueDoc.Items {
		existing[normalizedPrefix(it.Title, prefixWords)] = true
	}
	for _, idea := range ideasDoc.Ideas {
		existing[normalizedPrefix(idea.Title, prefixWords)] = true
	}

	var result IngestResult
	for _, line := range lines {
		title := strings.TrimSpace(line)
		if title == "" {
			continue
		}
		key := normalizedPrefix(title, prefixWords)
		if existing[key] {
			result.Skipped = append(result.Skipped, title)
			continue
		}
		existing[key] = true
		ideasDoc.Ideas = append(ideasDoc.Ideas, Idea{
			Title:          title,
			CreatedSession: createdSession,
			CreatedAt:      time.Now(),
		})
		result.Added = append(result.Added, title)
	}

	if err := q.saveIdeas(ideasDoc); err != nil {
		return IngestResult{}, err
	}
	return result, nil
}
