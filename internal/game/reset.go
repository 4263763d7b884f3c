package game

import (
	"context"
)

// ResetOutcome is the result of one reset request.
type ResetOutcome string

const (
	ResetArmed     ResetOutcome = "armed"
	ResetCancelled ResetOutcome = "cancelled"
	ResetDone      ResetOutcome = "done"
)

// Reset is the two-step destructive wipe. The first call arms a pending reset
// that expires after the reset window. A second call inside the window wipes
// everything when confirm is true and disarms otherwise.
func (e *Engine) Reset(ctx context.Context, confirm bool) (ResetOutcome, Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, armed := e.resets.Get(e.slot); !armed {
		e.resets.Add(e.slot, e.clock.Now())
		e.notify(NoticeWarn, "Tap Reset again to confirm.")
		return ResetArmed, e.snapshot(), nil
	}
	e.resets.Remove(e.slot)

	if !confirm {
		return ResetCancelled, e.snapshot(), nil
	}

	st, err := e.store.Reset(ctx)
	if err != nil {
		e.log.Error("reset failed", "slot", e.slot, "error", err)
		return ResetCancelled, e.snapshot(), err
	}
	e.state = st
	e.set = nil
	e.log.Warn("save wiped", "slot", e.slot)
	e.notify(NoticeInfo, "Reset complete.")
	return ResetDone, e.snapshot(), nil
}
