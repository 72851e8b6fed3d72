package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load .env from configDir (non-fatal if absent)
//  2. Load tickctl.yaml from configDir
//  3. Expand environment variables
//  4. Merge built-in defaults with user overrides
//  5. Validate all configuration
//  6. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	envPath := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Warn("Could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	}

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"rotation_pattern", stats.RotationPattern,
		"priority_targets", stats.PriorityTargets,
		"health_endpoints", stats.HealthEndpoints)

	return cfg, nil
}

// load reads tickctl.yaml (if present) and merges it over built-in defaults.
func load(_ context.Context, configDir string) (*Config, error) {
	raw, err := loadYAML(filepath.Join(configDir, "tickctl.yaml"))
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", err)
	}

	rotation, err := mergeInto(DefaultRotationConfig(), raw.Rotation)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("rotation: %w", err))
	}
	queue, err := mergeInto(DefaultQueueConfig(), raw.Queue)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("queue: %w", err))
	}
	circuit, err := mergeInto(DefaultCircuitConfig(), raw.Circuit)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("circuit: %w", err))
	}
	engagement, err := mergeInto(DefaultEngagementConfig(), raw.Engagement)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("engagement: %w", err))
	}
	hooks, err := mergeInto(DefaultHooksConfig(), raw.Hooks)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("hooks: %w", err))
	}
	session, err := mergeInto(DefaultSessionConfig(), raw.Session)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("session: %w", err))
	}
	llmChild, err := mergeInto(DefaultLLMChildConfig(), raw.LLMChild)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("llm_child: %w", err))
	}
	retention, err := mergeInto(DefaultRetentionConfig(), raw.Retention)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("retention: %w", err))
	}
	health, err := mergeInto(DefaultHealthConfig(), raw.Health)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("health: %w", err))
	}
	state, err := mergeInto(DefaultStateConfig(), raw.State)
	if err != nil {
		return nil, NewLoadError("tickctl.yaml", fmt.Errorf("state: %w", err))
	}

	return &Config{
		configDir:  configDir,
		Rotation:   rotation,
		Queue:      queue,
		Circuit:    circuit,
		Engagement: engagement,
		Hooks:      hooks,
		Session:    session,
		LLMChild:   llmChild,
		Retention:  retention,
		Health:     health,
		State:      state,
	}, nil
}

// loadYAML reads and parses a YAML knob file. A missing file yields an
// empty (all-nil) config so every section falls back to its built-in
// default — tickctl.yaml is optional.
func loadYAML(path string) (*TickctlYAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &TickctlYAMLConfig{}, nil
		}
		return nil, err
	}

	expanded := ExpandEnv(data)

	var cfg TickctlYAMLConfig
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &cfg, nil
}
