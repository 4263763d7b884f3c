package progression

import "github.com/dk3682/muscle-avatar/internal/models"

// Settle brings a record that did not come from Apply back inside the rule
// bounds: fatigue in [0, FatigueMax], sets left in [0, SetsPerDay] and
// 0 <= XP < XPToNext(Level), carrying surplus XP into levels. Reports
// whether anything changed.
func Settle(p *models.Progress, rules Rules) bool {
	before := *p
	p.Fatigue = clamp(p.Fatigue, 0, rules.FatigueMax)
	p.SetsLeft = min(max(p.SetsLeft, 0), rules.SetsPerDay)
	for _, m := range []*float64{&p.Chest, &p.Shoulders, &p.Arms} {
		if *m < 0 {
			*m = 0
		}
	}
	AddXP(p, 0, rules)
	return p.Fatigue != before.Fatigue ||
		p.SetsLeft != before.SetsLeft ||
		p.Chest != before.Chest ||
		p.Shoulders != before.Shoulders ||
		p.Arms != before.Arms ||
		p.XP != before.XP ||
		p.Level != before.Level
}
