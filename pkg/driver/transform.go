package driver

import (
	"github.com/tickwright/tickctl/pkg/rotation"
	"github.com/tickwright/tickctl/pkg/sessioncontext"
)

// DemoteBuildWhenQueueEmpty proposes running Engage instead of Build when
// the work queue produced no assigned task and at least one platform is
// reachable.
func DemoteBuildWhenQueueEmpty(mode rotation.Mode, ctx sessioncontext.Context) (rotation.Mode, bool) {
	if mode != rotation.ModeBuild {
		return "", false
	}
	if ctx.AssignedTask != nil {
		return "", false
	}
	if len(ctx.PlatformPlan.Allowed) == 0 {
		return "", false
	}
	return rotation.ModeEngage, true
}

// ApplyTransforms runs each transform in order and returns the result of
// the first one that accepts, or the original mode unchanged if none do.
func ApplyTransforms(transforms []Transform, mode rotation.Mode, ctx sessioncontext.Context) (rotation.Mode, bool) {
	for _, t := range transforms {
		if newMode, ok := t(mode, ctx); ok {
			return newMode, true
		}
	}
	return mode, false
}
