package progression

import (
	"math"

	"github.com/dk3682/muscle-avatar/internal/models"
)

// Muscle groups that can absorb leaked gains.
const (
	LeakArms      = "arms"
	LeakShoulders = "shoulders"
	LeakSplit     = "split"
)

// Result notes, keyed by where the leak went.
const (
	NoteArms      = "Form was too close, gains leaked into Arms."
	NoteShoulders = "Form was too wide, gains leaked into Shoulders."
	NoteSplit     = "Solid form range, most gains stayed on target."
)

// Gains are per-muscle stat deltas.
type Gains struct {
	Chest     float64 `json:"chest"`
	Shoulders float64 `json:"shoulders"`
	Arms      float64 `json:"arms"`
}

// Result is the outcome of one set before it is applied.
type Result struct {
	FormAcc      float64 `json:"formAcc"`
	RepAcc       float64 `json:"repAcc"`
	FormValue    float64 `json:"formValue"`
	Gains        Gains   `json:"gains"`
	LeakTarget   string  `json:"leakTarget"`
	FatigueDelta int     `json:"fatigueDelta"`
	XPGain       int     `json:"xpGain"`
	Note         string  `json:"note"`
}

// Applied reports what a Result did to the progress record.
type Applied struct {
	LeveledUp    bool `json:"leveledUp"`
	LevelsGained int  `json:"levelsGained"`
	NewLevel     int  `json:"newLevel"`
	FirstToday   bool `json:"firstToday"`
}

// FatigueFactor is the efficiency multiplier for the current fatigue.
func (r Rules) FatigueFactor(fatigue float64) float64 {
	return clamp(1-fatigue/r.FatigueSoftcap, r.FatigueFloor, 1)
}

// LevelFactor is the per-level gain bonus.
func (r Rules) LevelFactor(level int) float64 {
	if level < 1 {
		level = 1
	}
	return 1 + float64(level-1)*r.LevelStep
}

// LeakTarget classifies a form value into the muscle group that absorbs leak.
func (r Rules) LeakTarget(formValue float64) string {
	switch {
	case formValue < r.LeakLow:
		return LeakArms
	case formValue > r.LeakHigh:
		return LeakShoulders
	default:
		return LeakSplit
	}
}

// Compute maps set accuracy onto stat, fatigue and XP deltas. It does not
// modify p.
func Compute(p models.Progress, formAcc, repAcc, formValue float64, rules Rules) Result {
	formAcc = clamp(formAcc, 0, 1)
	repAcc = clamp(repAcc, 0, 1)
	formValue = clamp(formValue, 0, 100)

	base := rules.BaseMultiplier * rules.LevelFactor(p.Level) * rules.FatigueFactor(p.Fatigue)
	w := 1 - rules.AccuracyFloor
	target := base * (rules.AccuracyFloor + w*repAcc) * (rules.AccuracyFloor + w*formAcc)
	leak := base * (1 - formAcc) * (0.5 + 0.5*(1-repAcc))

	res := Result{
		FormAcc:    formAcc,
		RepAcc:     repAcc,
		FormValue:  formValue,
		Gains:      Gains{Chest: target},
		LeakTarget: rules.LeakTarget(formValue),
	}
	switch res.LeakTarget {
	case LeakArms:
		res.Gains.Arms = leak
		res.Note = NoteArms
	case LeakShoulders:
		res.Gains.Shoulders = leak
		res.Note = NoteShoulders
	default:
		res.Gains.Shoulders = leak * rules.LeakShoulderShare
		res.Gains.Arms = leak * (1 - rules.LeakShoulderShare)
		res.Note = NoteSplit
	}

	res.FatigueDelta = int(math.Round(rules.FatigueBase + (1-repAcc)*rules.FatigueRepWeight + (1-formAcc)*rules.FatigueFormWeight))

	bonus := min(p.Streak, rules.StreakBonusMax)
	res.XPGain = int(math.Round(rules.XPBase + rules.XPRepWeight*repAcc + rules.XPFormWeight*formAcc + float64(bonus)))
	return res
}

// Apply commits a Result to p: stats, fatigue, XP and levels, the daily
// training log, and the set counters.
func Apply(p *models.Progress, res Result, today string, rules Rules) Applied {
	p.Chest += math.Max(0, res.Gains.Chest)
	p.Shoulders += math.Max(0, res.Gains.Shoulders)
	p.Arms += math.Max(0, res.Gains.Arms)

	p.Fatigue = clamp(p.Fatigue+float64(res.FatigueDelta), 0, rules.FatigueMax)

	gained := AddXP(p, res.XPGain, rules)
	first := RecordTrainingDay(p, today, rules)

	p.SetsLeft = max(0, p.SetsLeft-1)
	p.TotalSets++

	return Applied{
		LeveledUp:    gained > 0,
		LevelsGained: gained,
		NewLevel:     p.Level,
		FirstToday:   first,
	}
}
