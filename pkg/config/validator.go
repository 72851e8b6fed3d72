package config

import (
	"fmt"
	"strings"
)

// validModeLetters is the alphabet rotation patterns are drawn from:
// Build, Engage, Reflect, Audit.
const validModeLetters = "BERA"

// validate checks cross-field and cross-reference invariants that a plain
// YAML unmarshal cannot enforce. This is a hand-rolled validator rather
// than a reflection-tag library (see DESIGN.md): the checks here are
// almost all cross-field (pattern alphabet, threshold ordering) rather
// than single-field range checks, which a tag-based validator expresses
// awkwardly.
func validate(cfg *Config) error {
	if err := validateRotation(cfg.Rotation); err != nil {
		return err
	}
	if err := validateCircuit(cfg.Circuit); err != nil {
		return err
	}
	if err := validateHooks(cfg.Hooks); err != nil {
		return err
	}
	if err := validateEngagement(cfg.Engagement); err != nil {
		return err
	}
	if err := validateSession(cfg.Session); err != nil {
		return err
	}
	return nil
}

func validateRotation(r *RotationConfig) error {
	if strings.TrimSpace(r.Pattern) == "" {
		return NewValidationError("rotation", "pattern", fmt.Errorf("%w: pattern must not be empty", ErrMissingRequiredField))
	}
	for _, c := range r.Pattern {
		if !strings.ContainsRune(validModeLetters, c) {
			return NewValidationError("rotation", "pattern",
				fmt.Errorf("%w: %q is not one of %s", ErrInvalidValue, c, validModeLetters))
		}
	}
	if r.MaxRetries < 0 {
		return NewValidationError("rotation", "max_retries", fmt.Errorf("%w: must be >= 0", ErrInvalidValue))
	}
	return nil
}

func validateCircuit(c *CircuitConfig) error {
	if c.FailureThreshold < 1 {
		return NewValidationError("circuit", "failure_threshold", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	if c.Cooldown <= 0 {
		return NewValidationError("circuit", "cooldown", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if c.DefunctConsecutiveFailures < c.FailureThreshold {
		return NewValidationError("circuit", "defunct_consecutive_failures",
			fmt.Errorf("%w: must be >= failure_threshold", ErrInvalidValue))
	}
	return nil
}

func validateHooks(h *HooksConfig) error {
	if h.MaxParallel < 1 {
		return NewValidationError("hooks", "max_parallel", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	if h.DefaultHookTimeout <= 0 || h.PostHookTimeout <= 0 {
		return NewValidationError("hooks", "*_hook_timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if h.PreBudget <= 0 || h.PostBudget <= 0 {
		return NewValidationError("hooks", "*_budget", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func validateEngagement(e *EngagementConfig) error {
	seen := make(map[string]bool, len(e.PriorityTargets))
	for _, id := range e.PriorityTargets {
		if strings.TrimSpace(id) == "" {
			return NewValidationError("engagement", "priority_targets", fmt.Errorf("%w: empty platform id", ErrInvalidValue))
		}
		if seen[id] {
			return NewValidationError("engagement", "priority_targets", fmt.Errorf("%w: duplicate platform id %q", ErrInvalidValue, id))
		}
		seen[id] = true
	}
	prevMin := 10 // one above the maximum valid score (0-9 scale)
	for i, t := range e.VerdictThresholds {
		if t.Label == "" {
			return NewValidationError("engagement", "verdict_thresholds", fmt.Errorf("%w: entry %d has empty label", ErrInvalidValue, i))
		}
		if t.MinScore > prevMin {
			return NewValidationError("engagement", "verdict_thresholds",
				fmt.Errorf("%w: entries must be sorted by descending min_score", ErrInvalidValue))
		}
		prevMin = t.MinScore
	}
	return nil
}

func validateSession(s *SessionConfig) error {
	if s.Timeout <= 0 {
		return NewValidationError("session", "timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if s.KillGrace <= 0 {
		return NewValidationError("session", "kill_grace", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if s.BudgetCap < 0 {
		return NewValidationError("session", "budget_cap", fmt.Errorf("%w: must be >= 0", ErrInvalidValue))
	}
	return nil
}
