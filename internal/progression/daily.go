package progression

import (
	"math"

	"github.com/dk3682/muscle-avatar/internal/models"
)

// ApplyDailyReset refreshes the daily set budget when the calendar day has
// changed since the last reset. It reports whether anything changed; calling it
// again on the same day is a no-op.
func ApplyDailyReset(p *models.Progress, today string, rules Rules) bool {
	if p.LastDay == nil {
		p.LastDay = &today
		p.SetsLeft = rules.SetsPerDay
		p.Streak = 1
		return true
	}
	if *p.LastDay == today {
		return false
	}

	p.LastDay = &today
	p.SetsLeft = rules.SetsPerDay
	p.Fatigue = math.Max(0, math.Floor(p.Fatigue*rules.RecoveryFactor))
	if rules.StreakMode == StreakLegacyRollover {
		p.Streak++
	}
	return true
}
