package game

import (
	"time"

	"github.com/dk3682/muscle-avatar/internal/models"
	"github.com/dk3682/muscle-avatar/internal/session"
)

// Notice levels.
const (
	NoticeInfo = "info"
	NoticeGood = "good"
	NoticeWarn = "warn"
)

// Notice is a short user-facing message (a toast in the browser view).
type Notice struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Snapshot is everything a view needs to render one frame.
type Snapshot struct {
	Slot          string          `json:"slot"`
	Today         string          `json:"today"`
	ProfileLocked bool            `json:"profileLocked"`
	CreatedAt     *time.Time      `json:"createdAt"`
	Profile       models.Profile  `json:"profile"`
	Progress      models.Progress `json:"progress"`
	XPToNext      int             `json:"xpToNext"`
	CanStart      bool            `json:"canStart"`
	Set           *session.View   `json:"set,omitempty"`
	ResetArmed    bool            `json:"resetArmed"`
	Notices       []Notice        `json:"notices,omitempty"`
}

func (e *Engine) notify(level, msg string) {
	e.notices = append(e.notices, Notice{Level: level, Message: msg, At: e.clock.Now()})
}

// snapshot copies state and drains notices. Callers hold e.mu.
func (e *Engine) snapshot() Snapshot {
	snap := e.build()
	e.notices = nil
	return snap
}

func (e *Engine) build() Snapshot {
	st := e.state.Clone()
	snap := Snapshot{
		Slot:          e.slot,
		Today:         e.today(),
		ProfileLocked: st.ProfileLocked,
		CreatedAt:     st.CreatedAt,
		Profile:       st.Profile,
		Progress:      st.Progress,
		XPToNext:      e.rules.XPToNext(st.Progress.Level),
		CanStart:      st.ProfileLocked && e.set == nil && st.Progress.SetsLeft > 0,
		ResetArmed:    e.resets.Contains(e.slot),
		Notices:       append([]Notice(nil), e.notices...),
	}
	if e.set != nil {
		v := e.set.View()
		snap.Set = &v
	}
	return snap
}
