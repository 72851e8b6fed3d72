package config

import "time"

// TickctlYAMLConfig is the raw shape of tickctl.yaml before defaults are
// merged in. Pointers distinguish "absent" (use default) from "zero value".
type TickctlYAMLConfig struct {
	Rotation   *RotationConfig   `yaml:"rotation"`
	Queue      *QueueConfig      `yaml:"queue"`
	Circuit    *CircuitConfig    `yaml:"circuit"`
	Engagement *EngagementConfig `yaml:"engagement"`
	Hooks      *HooksConfig      `yaml:"hooks"`
	Session    *SessionConfig    `yaml:"session"`
	LLMChild   *LLMChildConfig   `yaml:"llm_child"`
	Retention  *RetentionConfig  `yaml:"retention"`
	Health     *HealthConfig     `yaml:"health"`
	State      *StateConfig      `yaml:"state"`
}

// RotationConfig controls the rotation state machine.
type RotationConfig struct {
	// Pattern is a string over the alphabet {B,E,R,A}; pattern[i] is the
	// mode selected at rotation_index i.
	Pattern string `yaml:"pattern"`

	// MaxRetries is how many consecutive timeout outcomes are tolerated on
	// the same rotation index before advancing anyway.
	MaxRetries int `yaml:"max_retries"`
}

// QueueConfig holds the work queue's auto-promotion and dedup thresholds.
// These knobs are loaded, defaulted and merged, but the session driver
// does not read them: it passes a fixed low-water of 3 and buffer of 3 to
// auto-promote, and it does not run Dedup or IngestTodos.
type QueueConfig struct {
	// PromoteWhenEmpty is how many ideas to promote when the queue is
	// entirely empty.
	PromoteWhenEmpty int `yaml:"promote_when_empty"`

	// PromoteBuffer is how many ideas stay in the pool when promoting on a
	// non-empty queue: promote max(0, len(ideas) - PromoteBuffer).
	PromoteBuffer int `yaml:"promote_buffer"`

	// DedupPrefixWords (W) is how many leading words of a normalized title
	// are compared when deduplicating work items.
	DedupPrefixWords int `yaml:"dedup_prefix_words"`
}

// CircuitConfig controls the circuit breaker registry.
type CircuitConfig struct {
	// FailureThreshold is the number of consecutive failures that trips a
	// Closed circuit to Open.
	FailureThreshold int `yaml:"failure_threshold"`

	// Cooldown is how long an Open circuit waits before becoming Half-Open.
	Cooldown time.Duration `yaml:"cooldown"`

	// DefunctConsecutiveFailures and DefunctOpenFor are the joint criteria
	// under which the circuit registry marks an Open platform Defunct when
	// recording a failure: at least this many consecutive failures and open
	// for at least this long.
	DefunctConsecutiveFailures int           `yaml:"defunct_consecutive_failures"`
	DefunctOpenFor             time.Duration `yaml:"defunct_open_for"`
}

// EngagementConfig controls ROI ranking.
type EngagementConfig struct {
	// PriorityTargets are platform ids whose ROI score receives a flat
	// boost after base scoring, regardless of history.
	PriorityTargets []string `yaml:"priority_targets"`

	// PriorityBoost is the flat addition applied to each priority target.
	PriorityBoost float64 `yaml:"priority_boost"`

	// ExplorationWeight scales the bonus given to platforms whose recent
	// engagement count is below the median.
	ExplorationWeight float64 `yaml:"exploration_weight"`

	// DegradedFallbackCount is how many allowed platforms, taken in rank
	// order after the top choice, are additionally surfaced as "degraded"
	// fallbacks in the plan.
	DegradedFallbackCount int `yaml:"degraded_fallback_count"`

	// VerdictThresholds maps a verdict label to its minimum 0-9 score,
	// evaluated from highest threshold to lowest.
	VerdictThresholds []VerdictThreshold `yaml:"verdict_thresholds"`
}

// VerdictThreshold is one entry of EngagementConfig.VerdictThresholds.
type VerdictThreshold struct {
	Label    string `yaml:"label"`
	MinScore int    `yaml:"min_score"`
}

// HooksConfig controls the hook runner.
type HooksConfig struct {
	PreDir  string `yaml:"pre_dir"`
	PostDir string `yaml:"post_dir"`

	PreBudget  time.Duration `yaml:"pre_budget"`
	PostBudget time.Duration `yaml:"post_budget"`

	DefaultHookTimeout time.Duration `yaml:"default_hook_timeout"`
	PostHookTimeout    time.Duration `yaml:"post_hook_timeout"`

	// MaxParallel bounds how many hooks may run concurrently: parallel-safe
	// pre-session hooks, and post-session hooks.
	MaxParallel int `yaml:"max_parallel"`
}

// SessionConfig controls the session driver and LLM child wait.
type SessionConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	KillGrace    time.Duration `yaml:"kill_grace"`
	BudgetCap    float64       `yaml:"budget_cap"`
	LockStaleFor time.Duration `yaml:"lock_stale_for"`

	// TemplatesDir holds the prompt identity file (identity.txt) and one
	// file per mode name (Build.txt, Engage.txt, Reflect.txt, Audit.txt). A missing
	// directory or file yields an empty template, not an error.
	TemplatesDir string `yaml:"templates_dir"`
}

// LLMChildConfig describes how to invoke the LLM CLI child process.
type LLMChildConfig struct {
	BinaryPath string `yaml:"binary_path"`

	// Args and PromptVia are loaded but not used when the child is
	// spawned: the child is started with no extra arguments and always
	// receives the prompt on stdin.
	Args      []string `yaml:"args"`
	PromptVia string   `yaml:"prompt_via"`

	// MCPConfigPath is passed through to the child opaquely.
	MCPConfigPath string `yaml:"mcp_config_path"`
}

// RetentionConfig controls the retention sweeper.
type RetentionConfig struct {
	HistoryMaxAge          time.Duration `yaml:"history_max_age"`
	HealthLogMaxLines      int           `yaml:"health_log_max_lines"`
	IntelArchiveMaxEntries int           `yaml:"intel_archive_max_entries"`
}

// HealthConfig controls the health monitor.
type HealthConfig struct {
	Endpoints   []HealthEndpoint `yaml:"endpoints"`
	Interval    time.Duration    `yaml:"interval"`
	LogMaxLines int              `yaml:"log_max_lines"`
	Timeout     time.Duration    `yaml:"timeout"`
}

// HealthEndpoint is one probed endpoint.
type HealthEndpoint struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Method string `yaml:"method"`
}

// StateConfig locates the state directory and its log rotation behavior.
type StateConfig struct {
	Dir            string `yaml:"dir"`
	LogRotateLines int    `yaml:"log_rotate_lines"`
}
