package game

import (
	"context"
	"time"
)

// RunFrames drives active sets from a ticker at rate frames per second. It
// idles while no set is running and returns when ctx is done. Only meaningful
// with Options.ServerFrames.
func (e *Engine) RunFrames(ctx context.Context, rate int) {
	if rate <= 0 {
		rate = 60
	}
	interval := time.Second / time.Duration(rate)

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.wake:
		}

		e.log.Debug("frame loop running", "rate", rate)
		ticker := time.NewTicker(interval)
		last := time.Now()
		for running := true; running; {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case now := <-ticker.C:
				running = e.step(now.Sub(last).Seconds())
				last = now
			}
		}
		ticker.Stop()
		e.log.Debug("frame loop idle")
	}
}

// step advances the active set by one frame and reports whether it still
// needs frames.
func (e *Engine) step(dt float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set == nil || !e.set.Running() {
		return false
	}
	e.advance(dt)
	return e.set.Running()
}
