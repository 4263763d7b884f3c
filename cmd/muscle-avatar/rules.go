package main

import (
	"github.com/dk3682/muscle-avatar/internal/config"
	"github.com/dk3682/muscle-avatar/internal/progression"
)

// gameRules applies the config's overrides to the default rule set.
func gameRules(g config.GameConfig) (progression.Rules, error) {
	r := progression.DefaultRules()
	r.StreakMode = progression.StreakMode(g.StreakMode)

	o := g.Rules
	if o.FatigueSoftcap > 0 {
		r.FatigueSoftcap = o.FatigueSoftcap
	}
	if o.FatigueMax > 0 {
		r.FatigueMax = o.FatigueMax
	}
	if o.RecoveryFactor > 0 {
		r.RecoveryFactor = o.RecoveryFactor
	}
	if o.BaseMultiplier > 0 {
		r.BaseMultiplier = o.BaseMultiplier
	}
	if o.LevelStep != nil {
		r.LevelStep = *o.LevelStep
	}
	if o.TrainingLogCap > 0 {
		r.TrainingLogCap = o.TrainingLogCap
	}
	r.StreakBonusMax = o.StreakBonusMax

	return r, r.Validate()
}
