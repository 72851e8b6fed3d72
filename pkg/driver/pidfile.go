package driver

import (
	"encoding/json"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/tickwright/tickctl/pkg/state"
)

const childPIDFile = "llm-child.pid"

type pidPayload struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// recordChildPID persists the running child's PID so a crashed driver's
// next tick can find and clean it up.
func recordChildPID(store *state.Store, pid int, now time.Time) {
	_ = store.Write(childPIDFile, pidPayload{PID: pid, StartedAt: now})
}

// clearChildPID removes the PID record after the child has been waited
// on; a missing document is not an error.
func clearChildPID(store *state.Store) {
	_ = store.Write(childPIDFile, pidPayload{})
}

// reapStaleChild looks for a PID file left behind by a prior tick (one
// that crashed or was killed before it could clear its own record). If
// the recorded process is still alive, it is terminated — it is by
// definition orphaned, since only one driver tick runs at a time. The
// PID record is always cleared afterward.
func reapStaleChild(store *state.Store) {
	var payload pidPayload
	found, err := store.Read(childPIDFile, &payload)
	if err != nil || !found || payload.PID <= 0 {
		return
	}

	proc, err := os.FindProcess(payload.PID)
	if err == nil {
		if sigErr := proc.Signal(syscall.Signal(0)); sigErr == nil {
			slog.Warn("reaping orphaned LLM child from a prior tick", "pid", payload.PID)
			_ = proc.Signal(syscall.SIGTERM)
			time.Sleep(200 * time.Millisecond)
			_ = proc.Kill()
		}
	}

	clearChildPID(store)
}
