// Command tickctl runs a single session-driver tick, or one of the
// out-of-band maintenance subcommands, against a state directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tickwright/tickctl/pkg/circuit"
	"github.com/tickwright/tickctl/pkg/config"
	"github.com/tickwright/tickctl/pkg/directives"
	"github.com/tickwright/tickctl/pkg/driver"
	"github.com/tickwright/tickctl/pkg/engagement"
	"github.com/tickwright/tickctl/pkg/health"
	"github.com/tickwright/tickctl/pkg/hooks"
	"github.com/tickwright/tickctl/pkg/intel"
	"github.com/tickwright/tickctl/pkg/outcome"
	"github.com/tickwright/tickctl/pkg/platforms"
	"github.com/tickwright/tickctl/pkg/redact"
	"github.com/tickwright/tickctl/pkg/retention"
	"github.com/tickwright/tickctl/pkg/rotation"
	"github.com/tickwright/tickctl/pkg/sessioncontext"
	"github.com/tickwright/tickctl/pkg/state"
	"github.com/tickwright/tickctl/pkg/version"
	"github.com/tickwright/tickctl/pkg/workqueue"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the exit-code contract: 0 on a completed or skipped tick
// regardless of child outcome; 2 for a flag, --mode or subcommand error;
// 1 for invalid configuration, an unusable state directory, a wiring or
// lock error, or an uncaught orchestrator panic.
func run(args []string) int {
	var subcommand string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		subcommand = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("tickctl", flag.ContinueOnError)
	stateDir := fs.String("state-dir", getEnv("STATE_DIR", "./state"), "Path to the state directory")
	configDir := fs.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	dryRun := fs.Bool("dry-run", false, "Assemble and print the prompt without spawning the LLM child")
	mode := fs.String("mode", "", "Force the next tick to run as this mode (Build/Engage/Reflect/Audit)")
	safeMode := fs.Bool("safe-mode", false, "Skip non-essential init stages (pre/post hooks)")
	emergency := fs.Bool("emergency", false, "Skip rotation/context assembly; force a fixed Build tick")
	showVersion := fs.Bool("version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Println(version.Full())
		return 0
	}

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		return 1
	}

	store, err := state.New(*stateDir)
	if err != nil {
		slog.Error("failed to open state directory", "error", err)
		return 1
	}

	switch subcommand {
	case "retention-sweep":
		return runRetentionSweep(store, cfg)
	case "health-probe":
		return runHealthProbe(ctx, store, cfg)
	case "":
		// fall through to the default tick path
	default:
		slog.Error("unknown subcommand", "subcommand", subcommand)
		return 2
	}

	opts := driver.TickOptions{
		SafeMode:  *safeMode,
		Emergency: *emergency,
		DryRun:    *dryRun,
	}
	if *mode != "" {
		m, err := parseMode(*mode)
		if err != nil {
			slog.Error("invalid --mode", "error", err)
			return 2
		}
		opts.ModeOverride = &m
	}

	result, runErr := runTick(ctx, store, cfg, opts)
	if runErr != nil {
		slog.Error("session driver failed", "error", runErr)
		return 1
	}

	if result.Skipped {
		slog.Info("tick skipped, lock busy")
		return 0
	}
	if *dryRun {
		fmt.Println(result.Prompt)
		return 0
	}

	slog.Info("tick complete", "mode", result.Mode, "session", result.SessionNumber, "outcome", result.Outcome)
	return 0
}

func parseMode(s string) (rotation.Mode, error) {
	switch strings.ToLower(s) {
	case "build", "b":
		return rotation.ModeBuild, nil
	case "engage", "e":
		return rotation.ModeEngage, nil
	case "reflect", "r":
		return rotation.ModeReflect, nil
	case "audit", "a":
		return rotation.ModeAudit, nil
	default:
		return "", fmt.Errorf("unrecognized mode %q", s)
	}
}

// runTick wires every component into a driver.Driver and executes exactly
// one tick. A panic anywhere in construction or inside Tick is recovered
// here and reported as the fatal orchestrator error the exit-code
// contract allows, rather than crashing the process.
func runTick(ctx context.Context, store *state.Store, cfg *config.Config, opts driver.TickOptions) (result driver.TickResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("uncaught orchestrator panic: %v", r)
		}
	}()

	circuits := circuit.New(store, circuit.Params{
		FailureThreshold:           cfg.Circuit.FailureThreshold,
		Cooldown:                   cfg.Circuit.Cooldown,
		DefunctConsecutiveFailures: cfg.Circuit.DefunctConsecutiveFailures,
		DefunctOpenFor:             cfg.Circuit.DefunctOpenFor,
	})
	orch := engagement.New(circuits, engagement.PlanParams{
		PriorityTargets:       cfg.Engagement.PriorityTargets,
		PriorityBoost:         cfg.Engagement.PriorityBoost,
		ExplorationWeight:     cfg.Engagement.ExplorationWeight,
		DegradedFallbackCount: cfg.Engagement.DegradedFallbackCount,
	})
	queue := workqueue.New(store)
	dirs := directives.New(store)
	builder := sessioncontext.New(queue, orch, dirs)

	plat := platforms.New(store)
	knownPlatforms, err := platformSet(plat)
	if err != nil {
		return driver.TickResult{}, err
	}
	recorder := outcome.New(store, circuits, knownPlatforms)

	hookRunner := hooks.New()
	preManifest, err := hooks.LoadManifest(filepath.Join(cfg.Hooks.PreDir, "hooks.yaml"))
	if err != nil {
		return driver.TickResult{}, err
	}
	preHooks, err := hooks.Enumerate(cfg.Hooks.PreDir, preManifest)
	if err != nil {
		return driver.TickResult{}, err
	}
	postManifest, err := hooks.LoadManifest(filepath.Join(cfg.Hooks.PostDir, "hooks.yaml"))
	if err != nil {
		return driver.TickResult{}, err
	}
	postHooks, err := hooks.Enumerate(cfg.Hooks.PostDir, postManifest)
	if err != nil {
		return driver.TickResult{}, err
	}

	redactor := redact.New(redact.NewCredentialValueMasker(func() []string {
		return credentialValues(plat)
	}))

	deps := driver.Deps{
		Store:           store,
		Platforms:       plat,
		Context:         builder,
		Hooks:           hookRunner,
		Recorder:        recorder,
		Redactor:        redactor,
		Queue:           queue,
		Intel:           intel.New(store),
		RotationMachine: rotation.New(cfg.Rotation.MaxRetries),
		RotationPattern: cfg.Rotation.Pattern,
		Templates:       loadTemplates(cfg.Session.TemplatesDir),
		Transforms:      []driver.Transform{driver.DemoteBuildWhenQueueEmpty},
		PreHooks:        preHooks,
		PostHooks:       postHooks,
		LLMBinary:       cfg.LLMChild.BinaryPath,
		BudgetCap:       fmt.Sprintf("%g", cfg.Session.BudgetCap),
		MCPConfigPath:   cfg.LLMChild.MCPConfigPath,
		SessionTimeout:  cfg.Session.Timeout,
		KillGrace:       cfg.Session.KillGrace,
		LockStaleFor:    cfg.Session.LockStaleFor,
		PreHookTimeout:  cfg.Hooks.DefaultHookTimeout,
		PostHookTimeout: cfg.Hooks.PostHookTimeout,
		PreBudget:       cfg.Hooks.PreBudget,
		PostBudget:      cfg.Hooks.PostBudget,
		MaxParallelHook: cfg.Hooks.MaxParallel,
	}

	d := driver.New(deps)
	return d.Tick(ctx, opts)
}

func platformSet(plat *platforms.Store) (map[string]bool, error) {
	accounts, err := plat.List()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		set[a.ID] = true
	}
	return set, nil
}

// credentialValues is a placeholder source for the credential-value
// masker: this orchestrator never stores the credential values
// themselves (only whether a platform has one configured, per
// platforms.Account), so there is nothing beyond the fixed regex
// patterns to mask against today. The hook is wired so a future
// credential store can supply real values without touching pkg/redact
// or pkg/driver.
func credentialValues(_ *platforms.Store) []string {
	return nil
}

// loadTemplates reads identity.txt and one file per mode name (Build.txt,
// Engage.txt, Reflect.txt, Audit.txt) from dir.
// A missing directory or file yields an empty block rather than an
// error — prompt templates are an operator-authored convenience, not a
// required input.
func loadTemplates(dir string) driver.TemplateSet {
	if dir == "" {
		return driver.TemplateSet{}
	}
	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return ""
		}
		return string(data)
	}
	return driver.TemplateSet{
		Identity: read("identity.txt"),
		ByMode: map[string]string{
			string(rotation.ModeBuild):   read("Build.txt"),
			string(rotation.ModeEngage):  read("Engage.txt"),
			string(rotation.ModeReflect): read("Reflect.txt"),
			string(rotation.ModeAudit):   read("Audit.txt"),
		},
	}
}

func runRetentionSweep(store *state.Store, cfg *config.Config) int {
	sweeper := retention.New(store, retention.Config{
		HistoryMaxAge:          cfg.Retention.HistoryMaxAge,
		HealthLogMaxLines:      cfg.Retention.HealthLogMaxLines,
		IntelArchiveMaxEntries: cfg.Retention.IntelArchiveMaxEntries,
	})
	report, err := sweeper.Run(time.Now())
	if err != nil {
		slog.Error("retention sweep failed", "error", err)
		return 1
	}
	slog.Info("retention sweep complete",
		"history_removed", report.HistoryRemoved,
		"health_removed", report.HealthRemoved,
		"intel_removed", report.IntelRemoved)
	return 0
}

func runHealthProbe(ctx context.Context, store *state.Store, cfg *config.Config) int {
	endpoints := make([]health.Endpoint, 0, len(cfg.Health.Endpoints))
	for _, e := range cfg.Health.Endpoints {
		endpoints = append(endpoints, health.Endpoint{
			Name:    e.Name,
			URL:     e.URL,
			Method:  e.Method,
			Timeout: cfg.Health.Timeout,
		})
	}

	monitor := health.New(store, endpoints, cfg.Health.Interval, cfg.Health.LogMaxLines)
	monitor.Redactor = redact.New()

	line := monitor.CheckOnce(ctx)
	failed := 0
	for name, res := range line.Results {
		if !res.OK {
			failed++
			slog.Warn("endpoint unhealthy", "endpoint", name, "error_code", res.ErrorCode, "status", res.StatusCode)
		}
	}
	slog.Info("health probe complete", "endpoints", len(line.Results), "failed", failed)
	return 0
}
