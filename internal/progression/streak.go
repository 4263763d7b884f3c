package progression

import (
	"slices"

	"github.com/dk3682/muscle-avatar/internal/clock"
	"github.com/dk3682/muscle-avatar/internal/models"
)

// RecordTrainingDay runs the once-per-day bookkeeping for a completed set.
// It returns false when today was already recorded.
func RecordTrainingDay(p *models.Progress, today string, rules Rules) bool {
	if p.LastTrainedDay != nil && *p.LastTrainedDay == today {
		return false
	}

	if rules.StreakMode == StreakTrainedDay {
		if p.LastTrainedDay != nil && clock.IsNextDay(*p.LastTrainedDay, today) {
			p.Streak++
		} else {
			p.Streak = 1
		}
	}
	p.LastTrainedDay = &today

	if !slices.Contains(p.TrainingLog, today) {
		p.TrainingLog = append(p.TrainingLog, today)
	}
	if over := len(p.TrainingLog) - rules.TrainingLogCap; over > 0 {
		p.TrainingLog = append([]string{}, p.TrainingLog[over:]...)
	}
	return true
}
