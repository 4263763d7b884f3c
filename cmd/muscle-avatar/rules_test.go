package main

import (
	"testing"

	"github.com/dk3682/muscle-avatar/internal/config"
	"github.com/dk3682/muscle-avatar/internal/progression"
)

// TestGameRulesDefaults verifies an empty override block keeps the canonical rules.
func TestGameRulesDefaults(t *testing.T) {
	r, err := gameRules(config.Default().Game)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != progression.DefaultRules() {
		t.Errorf("rules = %+v, want defaults", r)
	}
}

// TestGameRulesOverrides verifies non-zero overrides replace defaults.
func TestGameRulesOverrides(t *testing.T) {
	g := config.Default().Game
	g.StreakMode = "legacy"
	g.Rules = config.RulesConfig{FatigueSoftcap: 160, BaseMultiplier: 1.2, StreakBonusMax: 8}

	r, err := gameRules(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.FatigueSoftcap != 160 || r.BaseMultiplier != 1.2 || r.StreakBonusMax != 8 {
		t.Errorf("rules = %+v", r)
	}
	if r.StreakMode != progression.StreakLegacyRollover {
		t.Errorf("streak mode = %q, want legacy", r.StreakMode)
	}
	if r.FatigueMax != progression.DefaultRules().FatigueMax {
		t.Errorf("fatigue max = %v, want default", r.FatigueMax)
	}
}

// TestGameRulesInvalid verifies an out-of-range override is rejected.
func TestGameRulesInvalid(t *testing.T) {
	g := config.Default().Game
	g.Rules.RecoveryFactor = 1.5
	if _, err := gameRules(g); err == nil {
		t.Error("expected error for recovery_factor > 1")
	}
}

// TestGameRulesLevelStepZero verifies an explicit zero level step turns the
// level bonus off, while an absent one keeps the default.
func TestGameRulesLevelStepZero(t *testing.T) {
	g := config.Default().Game
	zero := 0.0
	g.Rules.LevelStep = &zero

	r, err := gameRules(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.LevelStep != 0 {
		t.Errorf("level step = %v, want 0", r.LevelStep)
	}
	if f := r.LevelFactor(10); f != 1 {
		t.Errorf("level factor at 10 = %v, want 1", f)
	}

	g.Rules.LevelStep = nil
	if r, _ := gameRules(g); r.LevelStep != progression.DefaultRules().LevelStep {
		t.Errorf("level step = %v, want default", r.LevelStep)
	}
}
