package progression

import "github.com/dk3682/muscle-avatar/internal/models"

// XPToNext is the XP needed to advance from level to level+1.
func (r Rules) XPToNext(level int) int {
	if level < 1 {
		level = 1
	}
	return r.XPToNextBase + (level-1)*r.XPToNextStep
}

// AddXP credits xp and levels up as many times as it covers, leaving
// 0 <= p.XP < XPToNext(p.Level). Returns the number of levels gained.
func AddXP(p *models.Progress, xp int, rules Rules) int {
	if p.Level < 1 {
		p.Level = 1
	}
	p.XP += xp
	if p.XP < 0 {
		p.XP = 0
	}
	gained := 0
	for p.XP >= rules.XPToNext(p.Level) {
		p.XP -= rules.XPToNext(p.Level)
		p.Level++
		gained++
	}
	return gained
}

// LevelStep is one row of the XP table.
type LevelStep struct {
	Level    int `json:"level"`
	XPToNext int `json:"xpToNext"`
	TotalXP  int `json:"totalXp"` // cumulative XP needed to reach Level from 1
}

// XPTable lists the first n levels.
func (r Rules) XPTable(n int) []LevelStep {
	steps := make([]LevelStep, 0, n)
	total := 0
	for lvl := 1; lvl <= n; lvl++ {
		steps = append(steps, LevelStep{Level: lvl, XPToNext: r.XPToNext(lvl), TotalXP: total})
		total += r.XPToNext(lvl)
	}
	return steps
}
