package config

import "time"

// DefaultRotationConfig returns the built-in rotation defaults.
func DefaultRotationConfig() *RotationConfig {
	return &RotationConfig{
		Pattern:    "BBRE",
		MaxRetries: 1,
	}
}

// DefaultQueueConfig returns the built-in work queue defaults.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		PromoteWhenEmpty: 1,
		PromoteBuffer:    3,
		DedupPrefixWords: 6,
	}
}

// DefaultCircuitConfig returns the built-in circuit breaker defaults.
func DefaultCircuitConfig() *CircuitConfig {
	return &CircuitConfig{
		FailureThreshold:           3,
		Cooldown:                  24 * time.Hour,
		DefunctConsecutiveFailures: 10,
		DefunctOpenFor:             24 * time.Hour,
	}
}

// DefaultEngagementConfig returns the built-in engagement/ROI defaults.
func DefaultEngagementConfig() *EngagementConfig {
	return &EngagementConfig{
		PriorityTargets:       nil,
		PriorityBoost:         0.25,
		ExplorationWeight:     0.5,
		DegradedFallbackCount: 2,
		VerdictThresholds: []VerdictThreshold{
			{Label: "active_with_api", MinScore: 8},
			{Label: "active", MinScore: 6},
			{Label: "basic", MinScore: 3},
			{Label: "minimal", MinScore: 1},
			{Label: "unreachable", MinScore: 0},
		},
	}
}

// DefaultHooksConfig returns the built-in hook runner defaults.
func DefaultHooksConfig() *HooksConfig {
	return &HooksConfig{
		PreDir:             "hooks/pre",
		PostDir:            "hooks/post",
		PreBudget:          90 * time.Second,
		PostBudget:         120 * time.Second,
		DefaultHookTimeout: 30 * time.Second,
		PostHookTimeout:    60 * time.Second,
		MaxParallel:        4,
	}
}

// DefaultSessionConfig returns the built-in session driver defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		Timeout:      15 * time.Minute,
		KillGrace:    30 * time.Second,
		BudgetCap:    5.0,
		LockStaleFor: 20 * time.Minute,
		TemplatesDir: "templates",
	}
}

// DefaultLLMChildConfig returns the built-in LLM child invocation defaults.
func DefaultLLMChildConfig() *LLMChildConfig {
	return &LLMChildConfig{
		BinaryPath:    "llm-agent",
		Args:          nil,
		PromptVia:     "stdin",
		MCPConfigPath: "",
	}
}

// DefaultRetentionConfig returns the built-in retention sweeper defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		HistoryMaxAge:          90 * 24 * time.Hour,
		HealthLogMaxLines:      20000,
		IntelArchiveMaxEntries: 5000,
	}
}

// DefaultHealthConfig returns the built-in health monitor defaults.
func DefaultHealthConfig() *HealthConfig {
	return &HealthConfig{
		Endpoints:   nil,
		Interval:    5 * time.Minute,
		LogMaxLines: 20000,
		Timeout:     10 * time.Second,
	}
}

// DefaultStateConfig returns the built-in state directory defaults.
func DefaultStateConfig() *StateConfig {
	return &StateConfig{
		Dir:            "./state",
		LogRotateLines: 10000,
	}
}
