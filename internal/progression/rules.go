// Package progression holds the training rules: daily recovery, the gain
// formula, XP leveling and streak bookkeeping. Everything here is pure over
// models.Progress; persistence and sessions live elsewhere.
package progression

import (
	"fmt"
	"math"
)

// StreakMode selects how the consecutive-day counter advances.
type StreakMode string

const (
	// StreakTrainedDay advances on the first completed set of a day when the
	// previous training day was yesterday, and restarts at 1 otherwise.
	StreakTrainedDay StreakMode = "trained_day"
	// StreakLegacyRollover increments on every day rollover whether or not the
	// player trained. Kept for saves created by older builds.
	StreakLegacyRollover StreakMode = "legacy"
)

// Rules is the tunable constant set of the game.
type Rules struct {
	SetsPerDay     int
	RecoveryFactor float64 // overnight fatigue multiplier

	FatigueSoftcap float64
	FatigueMax     float64
	FatigueFloor   float64 // lowest efficiency fatigue can push a set to

	BaseMultiplier float64
	LevelStep      float64 // per-level bonus on base gain

	AccuracyFloor float64 // share of target gain earned at zero accuracy

	LeakLow           float64 // form below this leaks into arms
	LeakHigh          float64 // form above this leaks into shoulders
	LeakShoulderShare float64 // shoulders' share of the leak in between

	FatigueBase       float64
	FatigueRepWeight  float64
	FatigueFormWeight float64

	XPBase         float64
	XPRepWeight    float64
	XPFormWeight   float64
	StreakBonusMax int

	XPToNextBase int
	XPToNextStep int

	StreakMode     StreakMode
	TrainingLogCap int
}

// DefaultRules returns the canonical constant set.
func DefaultRules() Rules {
	return Rules{
		SetsPerDay:        3,
		RecoveryFactor:    0.55,
		FatigueSoftcap:    120,
		FatigueMax:        140,
		FatigueFloor:      0.55,
		BaseMultiplier:    1.25,
		LevelStep:         0.04,
		AccuracyFloor:     0.40,
		LeakLow:           45,
		LeakHigh:          75,
		LeakShoulderShare: 0.55,
		FatigueBase:       10,
		FatigueRepWeight:  10,
		FatigueFormWeight: 8,
		XPBase:            14,
		XPRepWeight:       18,
		XPFormWeight:      16,
		StreakBonusMax:    0,
		XPToNextBase:      60,
		XPToNextStep:      22,
		StreakMode:        StreakTrainedDay,
		TrainingLogCap:    180,
	}
}

// Validate rejects rule sets that would break the progression invariants.
func (r Rules) Validate() error {
	switch {
	case r.SetsPerDay < 1:
		return fmt.Errorf("sets per day must be positive")
	case r.RecoveryFactor < 0 || r.RecoveryFactor > 1:
		return fmt.Errorf("recovery factor must be in [0,1]")
	case r.FatigueSoftcap <= 0:
		return fmt.Errorf("fatigue softcap must be positive")
	case r.FatigueMax <= 0:
		return fmt.Errorf("fatigue max must be positive")
	case r.FatigueFloor < 0 || r.FatigueFloor > 1:
		return fmt.Errorf("fatigue floor must be in [0,1]")
	case r.BaseMultiplier <= 0:
		return fmt.Errorf("base multiplier must be positive")
	case r.LevelStep < 0:
		return fmt.Errorf("level step must not be negative")
	case r.AccuracyFloor < 0 || r.AccuracyFloor > 1:
		return fmt.Errorf("accuracy floor must be in [0,1]")
	case r.LeakLow > r.LeakHigh:
		return fmt.Errorf("leak thresholds out of order")
	case r.LeakShoulderShare < 0 || r.LeakShoulderShare > 1:
		return fmt.Errorf("leak shoulder share must be in [0,1]")
	case r.StreakBonusMax < 0:
		return fmt.Errorf("streak bonus must not be negative")
	case r.XPToNextBase < 1 || r.XPToNextStep < 1:
		return fmt.Errorf("xp curve must be strictly increasing")
	case r.StreakMode != StreakTrainedDay && r.StreakMode != StreakLegacyRollover:
		return fmt.Errorf("unknown streak mode %q", r.StreakMode)
	case r.TrainingLogCap < 1:
		return fmt.Errorf("training log cap must be positive")
	}
	return nil
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
