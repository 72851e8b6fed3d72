package sessioncontext

import (
	"time"

	"github.com/tickwright/tickctl/pkg/directives"
	"github.com/tickwright/tickctl/pkg/engagement"
	"github.com/tickwright/tickctl/pkg/rotation"
	"github.com/tickwright/tickctl/pkg/workqueue"
)

// Builder assembles a Context from the live state of the components it
// reads from. Build is the only place it is allowed to mutate anything,
// and only via AutoPromote on Build/Reflect — every other read is a
// pure query.
type Builder struct {
	queue      *workqueue.Queue
	engagement *engagement.Orchestrator
	directives *directives.Store
}

// New returns a Builder wired to the given component instances.
func New(queue *workqueue.Queue, eng *engagement.Orchestrator, dirs *directives.Store) *Builder {
	return &Builder{queue: queue, engagement: eng, directives: dirs}
}

// Build assembles the context for one tick. It is deterministic for a
// given mode/counter/knobs/now and the current persisted state, and its
// only side effect is the auto-promote call on Build/Reflect modes.
func (b *Builder) Build(mode rotation.Mode, counter int, knobs Knobs, now time.Time) (Context, error) {
	ctx := Context{
		Rotation: RotationInfo{
			Mode:         mode,
			Counter:      counter,
			PerTypeCount: knobs.PerTypeCounters[mode],
		},
		DedupReport:  knobs.DedupReport,
		TodoIngested: knobs.TodoIngested,
		CapabilitySummary: CapabilitySummary{
			LivePlatforms:      knobs.LivePlatforms,
			MissingCredentials: knobs.MissingCredentials,
		},
	}

	if mode == rotation.ModeBuild {
		task, err := b.queue.SelectNext(knobs.SelectBudgetHint)
		if err != nil {
			return Context{}, err
		}
		ctx.AssignedTask = task
	}

	if mode == rotation.ModeBuild || mode == rotation.ModeReflect {
		promoted, err := b.queue.AutoPromote(knobs.AutoPromoteLowWater, knobs.AutoPromoteBuffer)
		if err != nil {
			return Context{}, err
		}
		ctx.BrainstormingSeeded = promoted.PromotedItems
	}

	plan, evalTarget, err := b.engagement.Build(knobs.Platforms, knobs.PlatformStats, knobs.LastEvaluated, knobs.LastVerdict, now)
	if err != nil {
		return Context{}, err
	}
	ctx.PlatformPlan = plan
	ctx.EvalTarget = EvalTargetInfo{
		PlatformID:  evalTarget,
		URL:         knobs.PlatformURLs[evalTarget],
		LastVerdict: knobs.LastVerdict,
	}

	active, err := b.directives.Active()
	if err != nil {
		return Context{}, err
	}
	ctx.DirectivesActive = active

	if knobs.Render != nil {
		block, err := knobs.Render(mode, ctx)
		if err != nil {
			ctx.Warnings = append(ctx.Warnings, "mode_specific_block assembly failed: "+err.Error())
		} else {
			ctx.ModeSpecificBlock = block
		}
	}

	return ctx, nil
}
