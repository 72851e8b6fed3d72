package workqueue

// SelectNext returns the highest-priority ready item, or nil if none
// qualify. Ready means status=pending and every dep is done. Items are
// ranked by priority ascending (lower number = more urgent), ties broken
// by created_session ascending. When budgetHint is "tight", S/M items are
// preferred over L regardless of priority.
func (q *Queue) SelectNext(budgetHint BudgetHint) (*WorkItem, error) {
	doc, err := q.load()
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(doc.Items))
	for _, it := range doc.Items {
		if it.Status == StatusDone {
			done[it.ID] = true
		}
	}

	var ready []WorkItem
	for _, it := range doc.Items {
		if it.Status != StatusPending {
			continue
		}
		if !allDepsDone(it.Deps, done) {
			continue
		}
		ready = append(ready, it)
	}
	if len(ready) == 0 {
		return nil, nil
	}

	if budgetHint == BudgetTight {
		if small := filterComplexity(ready, ComplexitySmall, ComplexityMedium); len(small) > 0 {
			ready = small
		}
	}

	best := ready[0]
	for _, it := range ready[1:] {
		if betterRank(it, best) {
			best = it
		}
	}
	return &best, nil
}

func allDepsDone(deps []string, done map[string]bool) bool {
	for _, d := range deps {
		if !done[d] {
			return false
		}
	}
	return true
}

func filterComplexity(items []WorkItem, allowed ...Complexity) []WorkItem {
	set := make(map[Complexity]bool, len(allowed))
	for _, c := range allowed {
		set[c] = true
	}
	var out []WorkItem
	for _, it := range items {
		if set[it.Complexity] {
			out = append(out, it)
		}
	}
	return out
}

// betterRank reports whether candidate ranks ahead of current: lower
// priority number wins, ties broken by earlier created_session.
func betterRank(candidate, current WorkItem) bool {
	if candidate.Priority != current.Priority {
		return candidate.Priority < current.Priority
	}
	return candidate.CreatedSession < current.CreatedSession
}
