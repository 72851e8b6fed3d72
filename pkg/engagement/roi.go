package engagement

import "sort"

// writeRatioWeight and costPenaltyWeight tune the base ROI formula: a
// platform that converts a high share of attempts into writes, cheaply,
// scores highest before exploration and priority adjustments.
const (
	writeRatioWeight  = 10.0
	costPenaltyWeight = 1.0
)

// PlanParams carries the knobs ROI scoring and fallback selection need
// from configuration (pkg/config.EngagementConfig).
type PlanParams struct {
	PriorityTargets       []string
	PriorityBoost         float64
	ExplorationWeight     float64
	DegradedFallbackCount int
}

// BuildPlan computes the ROI-ranked platform plan for the given stats. If
// stats is empty or every platform has zero attempts and zero writes,
// analytics input is treated as unavailable and the plan falls back to
// alphabetical order with zero scores.
func BuildPlan(platforms []string, stats map[string]PlatformStats, params PlanParams, lastEvaluated string, lastVerdict VerdictLabel) Plan {
	if len(platforms) == 0 {
		return Plan{}
	}

	if !hasUsableAnalytics(platforms, stats) {
		sorted := append([]string(nil), platforms...)
		sort.Strings(sorted)
		ranked := make([]Ranked, len(sorted))
		for i, p := range sorted {
			ranked[i] = Ranked{Platform: p, Score: 0}
		}
		return Plan{
			Ranked:     ranked,
			Degraded:   degradedFallback(sorted, params.DegradedFallbackCount),
			EvalTarget: pickEvalTarget(sorted, lastEvaluated, lastVerdict),
			Fallback:   true,
		}
	}

	median := medianRecentEngagement(platforms, stats)
	priority := make(map[string]bool, len(params.PriorityTargets))
	for _, p := range params.PriorityTargets {
		priority[p] = true
	}

	ranked := make([]Ranked, 0, len(platforms))
	for _, p := range platforms {
		ranked = append(ranked, Ranked{Platform: p, Score: scoreOf(stats[p], median, params, priority[p])})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Platform < ranked[j].Platform
	})

	ordered := make([]string, len(ranked))
	for i, r := range ranked {
		ordered[i] = r.Platform
	}

	return Plan{
		Ranked:     ranked,
		Degraded:   degradedFallback(ordered, params.DegradedFallbackCount),
		EvalTarget: pickEvalTarget(ordered, lastEvaluated, lastVerdict),
	}
}

func hasUsableAnalytics(platforms []string, stats map[string]PlatformStats) bool {
	for _, p := range platforms {
		s, ok := stats[p]
		if ok && (s.Attempts > 0 || s.Writes > 0) {
			return true
		}
	}
	return false
}

func medianRecentEngagement(platforms []string, stats map[string]PlatformStats) float64 {
	counts := make([]int, 0, len(platforms))
	for _, p := range platforms {
		counts = append(counts, stats[p].RecentEngagementCount)
	}
	sort.Ints(counts)
	n := len(counts)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(counts[n/2])
	}
	return float64(counts[n/2-1]+counts[n/2]) / 2
}

func scoreOf(s PlatformStats, median float64, params PlanParams, isPriority bool) float64 {
	writeRatio := 0.0
	if s.Attempts > 0 {
		writeRatio = float64(s.Writes) / float64(s.Attempts)
	}

	costPerWrite := 0.0
	if s.Writes > 0 {
		costPerWrite = s.Cost / float64(s.Writes)
	}

	base := writeRatio*writeRatioWeight - costPerWrite*costPenaltyWeight
	exploration := params.ExplorationWeight * (median - float64(s.RecentEngagementCount))

	score := base + exploration
	if isPriority {
		score += params.PriorityBoost
	}
	return score
}

// degradedFallback returns up to count platforms from ordered, after the
// primary choice, for the session driver to fall back to if its first
// pick is unreachable this tick.
func degradedFallback(ordered []string, count int) []string {
	if len(ordered) <= 1 || count <= 0 {
		return nil
	}
	rest := ordered[1:]
	if len(rest) > count {
		rest = rest[:count]
	}
	return append([]string(nil), rest...)
}

// pickEvalTarget keeps evaluating the same platform while it verdicts
// active/active_with_api (deepen an already-promising integration), and
// otherwise rotates to the next-ranked platform that was not the last
// one evaluated.
func pickEvalTarget(ordered []string, lastEvaluated string, lastVerdict VerdictLabel) string {
	if len(ordered) == 0 {
		return ""
	}
	if lastEvaluated != "" && (lastVerdict == VerdictActive || lastVerdict == VerdictActiveWithAPI) {
		for _, p := range ordered {
			if p == lastEvaluated {
				return p
			}
		}
	}
	for _, p := range ordered {
		if p != lastEvaluated {
			return p
		}
	}
	return ordered[0]
}
