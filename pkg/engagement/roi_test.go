package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPlanFallsBackToAlphabeticalWhenAnalyticsUnavailable(t *testing.T) {
	plan := BuildPlan([]string{"zeta", "alpha", "mu"}, nil, PlanParams{}, "", "")
	assert.True(t, plan.Fallback)

	var ordered []string
	for _, r := range plan.Ranked {
		ordered = append(ordered, r.Platform)
		assert.Zero(t, r.Score)
	}
	assert.Equal(t, []string{"alpha", "mu", "zeta"}, ordered)
}

func TestBuildPlanRanksHigherWriteRatioAbove(t *testing.T) {
	stats := map[string]PlatformStats{
		"prolific": {Writes: 9, Attempts: 10, Cost: 1},
		"sparse":   {Writes: 1, Attempts: 10, Cost: 1},
	}
	plan := BuildPlan([]string{"prolific", "sparse"}, stats, PlanParams{}, "", "")
	assert.Equal(t, "prolific", plan.Ranked[0].Platform)
}

func TestBuildPlanPriorityBoostCanOvertakeHigherBaseScore(t *testing.T) {
	stats := map[string]PlatformStats{
		"prolific": {Writes: 9, Attempts: 10, Cost: 1},
		"favored":  {Writes: 1, Attempts: 10, Cost: 1},
	}
	params := PlanParams{PriorityTargets: []string{"favored"}, PriorityBoost: 100}
	plan := BuildPlan([]string{"prolific", "favored"}, stats, params, "", "")
	assert.Equal(t, "favored", plan.Ranked[0].Platform)
}

func TestBuildPlanExplorationRewardsLowRecentEngagement(t *testing.T) {
	stats := map[string]PlatformStats{
		"overused":  {Writes: 5, Attempts: 10, Cost: 1, RecentEngagementCount: 50},
		"neglected": {Writes: 5, Attempts: 10, Cost: 1, RecentEngagementCount: 0},
	}
	params := PlanParams{ExplorationWeight: 1}
	plan := BuildPlan([]string{"overused", "neglected"}, stats, params, "", "")
	assert.Equal(t, "neglected", plan.Ranked[0].Platform)
}

func TestDegradedFallbackExcludesTopChoice(t *testing.T) {
	plan := BuildPlan([]string{"a", "b", "c", "d"}, nil, PlanParams{DegradedFallbackCount: 2}, "", "")
	assert.Equal(t, []string{"b", "c"}, plan.Degraded)
}

func TestPickEvalTargetRotatesAwayFromPoorVerdict(t *testing.T) {
	plan := BuildPlan([]string{"a", "b", "c"}, nil, PlanParams{}, "a", VerdictUnreachable)
	assert.NotEqual(t, "a", plan.EvalTarget)
}

func TestPickEvalTargetStaysOnActiveVerdict(t *testing.T) {
	plan := BuildPlan([]string{"a", "b", "c"}, nil, PlanParams{}, "b", VerdictActiveWithAPI)
	assert.Equal(t, "b", plan.EvalTarget)
}
