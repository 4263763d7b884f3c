// Package game owns the save record and the active set, and turns view-layer
// input events into state changes. All methods are safe for concurrent use;
// they are serialized so the game behaves as a single thread of control.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dk3682/muscle-avatar/internal/clock"
	"github.com/dk3682/muscle-avatar/internal/metrics"
	"github.com/dk3682/muscle-avatar/internal/models"
	"github.com/dk3682/muscle-avatar/internal/progression"
	"github.com/dk3682/muscle-avatar/internal/session"
)

// Rejections. None of them change state.
var (
	ErrProfileLocked    = errors.New("profile is locked")
	ErrProfileNotLocked = errors.New("profile is not locked yet")
	ErrNoSetsLeft       = errors.New("no sets left today")
	ErrSessionActive    = errors.New("a set is already in progress")
	ErrNoSession        = errors.New("no set in progress")
	ErrWrongPhase       = session.ErrWrongPhase
	ErrServerFrames     = errors.New("frames are driven by the server")
)

// Persistence is the save-record port.
type Persistence interface {
	Load(ctx context.Context) (*models.SaveState, bool)
	Save(ctx context.Context, st *models.SaveState) error
	Reset(ctx context.Context) (*models.SaveState, error)
	Import(ctx context.Context, data []byte) (*models.SaveState, error)
}

// DefaultResetWindow is how long a first reset request stays armed.
const DefaultResetWindow = 3 * time.Second

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Slot         string
	Rules        progression.Rules
	Clock        clock.Clock
	Random       session.RandomSource
	ResetWindow  time.Duration
	ServerFrames bool
}

// Engine is the game's single source of truth.
type Engine struct {
	mu     sync.Mutex
	store  Persistence
	rules  progression.Rules
	clock  clock.Clock
	rng    session.RandomSource
	log    *slog.Logger
	slot   string
	frames bool

	state   *models.SaveState
	set     *session.Set
	resets  *expirable.LRU[string, time.Time]
	notices []Notice
	wake    chan struct{}
}

// New loads the save (or starts fresh) and applies any pending daily reset.
func New(ctx context.Context, store Persistence, opts Options, log *slog.Logger) (*Engine, error) {
	if opts.Rules == (progression.Rules{}) {
		opts.Rules = progression.DefaultRules()
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Random == nil {
		opts.Random = session.NewRandom(0)
	}
	if opts.ResetWindow <= 0 {
		opts.ResetWindow = DefaultResetWindow
	}
	if opts.Slot == "" {
		opts.Slot = "default"
	}

	e := &Engine{
		store:  store,
		rules:  opts.Rules,
		clock:  opts.Clock,
		rng:    opts.Random,
		log:    log,
		slot:   opts.Slot,
		frames: opts.ServerFrames,
		resets: expirable.NewLRU[string, time.Time](8, nil, opts.ResetWindow),
		wake:   make(chan struct{}, 1),
	}

	st, ok := store.Load(ctx)
	if !ok {
		st = models.DefaultSaveState()
		log.Info("no save found, starting fresh", "slot", e.slot)
	}

	e.mu.Lock()
	e.adopt(ctx, st)
	e.ensureDaily(ctx)
	e.mu.Unlock()
	return e, nil
}

// Rules returns the active rule set.
func (e *Engine) Rules() progression.Rules { return e.rules }

// ServerFrames reports whether the server drives frames.
func (e *Engine) ServerFrames() bool { return e.frames }

func (e *Engine) today() string {
	return clock.Today(e.clock)
}

// ensureDaily applies the day rollover. Callers hold e.mu.
func (e *Engine) ensureDaily(ctx context.Context) {
	if !e.state.ProfileLocked {
		return
	}
	today := e.today()
	if !progression.ApplyDailyReset(&e.state.Progress, today, e.rules) {
		return
	}
	metrics.DailyResets.Inc()
	e.log.Info("daily reset", "day", today, "fatigue", e.state.Progress.Fatigue, "streak", e.state.Progress.Streak)
	e.persist(ctx)
	e.notify(NoticeInfo, fmt.Sprintf("New day: sets refreshed (%d).", e.rules.SetsPerDay))
}

// persist writes the record. Failures are logged and counted but never
// interrupt play.
// adopt installs a record read from storage or a backup, settling it into
// the active rules first. Callers hold e.mu.
func (e *Engine) adopt(ctx context.Context, st *models.SaveState) {
	e.state = st
	if progression.Settle(&st.Progress, e.rules) {
		e.log.Warn("save outside rule bounds, settled", "slot", e.slot,
			"level", st.Progress.Level, "xp", st.Progress.XP, "fatigue", st.Progress.Fatigue)
		e.persist(ctx)
	}
}

func (e *Engine) persist(ctx context.Context) {
	if err := e.store.Save(ctx, e.state); err != nil {
		metrics.SaveErrors.Inc()
		e.log.Error("save failed", "slot", e.slot, "error", err)
	}
}

// Snapshot returns the current state and drains pending notices.
func (e *Engine) Snapshot(ctx context.Context) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureDaily(ctx)
	return e.snapshot()
}

// Peek is Snapshot without draining notices, for observers (MCP, admin
// tools) that must not steal toasts from the player's view.
func (e *Engine) Peek(ctx context.Context) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureDaily(ctx)
	return e.build()
}

// ChangeName edits the avatar name before the profile is locked.
func (e *Engine) ChangeName(ctx context.Context, name string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.ProfileLocked {
		return e.snapshot(), ErrProfileLocked
	}
	e.state.Profile.Name = models.NormalizeName(name)
	e.persist(ctx)
	return e.snapshot(), nil
}

// CycleAppearance steps one appearance selector left (dir<0) or right (dir>0).
func (e *Engine) CycleAppearance(ctx context.Context, field string, dir int) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.ProfileLocked {
		return e.snapshot(), ErrProfileLocked
	}
	step := 0
	switch {
	case dir > 0:
		step = 1
	case dir < 0:
		step = -1
	}
	if err := e.state.Profile.Cycle(field, step); err != nil {
		return e.snapshot(), err
	}
	e.persist(ctx)
	return e.snapshot(), nil
}

// ConfirmProfile locks the avatar for good and starts daily tracking.
func (e *Engine) ConfirmProfile(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.ProfileLocked {
		return e.snapshot(), ErrProfileLocked
	}
	if err := e.state.Profile.ValidateForLock(); err != nil {
		e.notify(NoticeWarn, "Please enter a name.")
		return e.snapshot(), err
	}

	now := e.clock.Now()
	e.state.ProfileLocked = true
	e.state.CreatedAt = &now
	e.log.Info("profile locked", "name", e.state.Profile.Name)
	e.notify(NoticeInfo, "Profile locked.")
	e.persist(ctx)
	e.ensureDaily(ctx)
	return e.snapshot(), nil
}

// StartSet begins a new set in the form phase.
func (e *Engine) StartSet(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.ProfileLocked {
		return e.snapshot(), ErrProfileNotLocked
	}
	e.ensureDaily(ctx)
	if e.set != nil {
		return e.snapshot(), ErrSessionActive
	}
	if e.state.Progress.SetsLeft <= 0 {
		e.notify(NoticeWarn, "No sets left today.")
		return e.snapshot(), ErrNoSetsLeft
	}

	e.set = session.New(e.rng, e.rules)
	metrics.SetsStarted.Inc()
	e.log.Info("set started", "set", e.set.ID(), "sets_left", e.state.Progress.SetsLeft)
	e.notify(NoticeInfo, "Form phase: adjust!")

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return e.snapshot(), nil
}

// SetForm forwards the form slider position.
func (e *Engine) SetForm(_ context.Context, value float64) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set == nil {
		return e.snapshot(), ErrNoSession
	}
	if err := e.set.SetForm(value); err != nil {
		return e.snapshot(), err
	}
	return e.snapshot(), nil
}

// Advance steps the active set by dt seconds. Only for client-driven frames.
func (e *Engine) Advance(_ context.Context, dt float64) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frames {
		return e.snapshot(), ErrServerFrames
	}
	if e.set == nil {
		return e.snapshot(), ErrNoSession
	}
	e.advance(dt)
	return e.snapshot(), nil
}

// advance steps the set. Callers hold e.mu.
func (e *Engine) advance(dt float64) {
	if e.set.Advance(dt) {
		view := e.set.View()
		e.log.Debug("form scored", "set", view.ID, "form", view.FormValue, "form_acc", view.FormAcc)
	}
}

// Tap scores one rep. The tenth tap applies the set's gains and saves.
func (e *Engine) Tap(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set == nil {
		return e.snapshot(), ErrNoSession
	}
	tap, err := e.set.Tap()
	if err != nil {
		return e.snapshot(), err
	}

	if tap.Hit {
		metrics.Reps.WithLabelValues("hit").Inc()
		e.notify(NoticeGood, "Good rep!")
	} else {
		metrics.Reps.WithLabelValues("miss").Inc()
		e.notify(NoticeWarn, "Miss!")
	}

	if tap.Done {
		e.finishSet(ctx)
	}
	return e.snapshot(), nil
}

// finishSet runs the gain calculator on a finished set. Callers hold e.mu.
func (e *Engine) finishSet(ctx context.Context) {
	formAcc, repAcc, formValue := e.set.Scores()
	p := &e.state.Progress

	res := progression.Compute(*p, formAcc, repAcc, formValue, e.rules)
	applied := progression.Apply(p, res, e.today(), e.rules)
	e.set.Complete(res, applied)

	metrics.SetsCompleted.WithLabelValues(res.LeakTarget).Inc()
	metrics.FormAccuracy.Observe(formAcc)
	metrics.LevelUps.Add(float64(applied.LevelsGained))

	e.log.Info("set completed",
		"set", e.set.ID(),
		"form_acc", formAcc,
		"rep_acc", repAcc,
		"chest", res.Gains.Chest,
		"shoulders", res.Gains.Shoulders,
		"arms", res.Gains.Arms,
		"xp", res.XPGain,
		"level", p.Level,
		"sets_left", p.SetsLeft,
	)
	for lvl := p.Level - applied.LevelsGained + 1; lvl <= p.Level; lvl++ {
		e.notify(NoticeGood, fmt.Sprintf("Level up! %d", lvl))
	}
	e.persist(ctx)
}

// Acknowledge closes a finished set.
func (e *Engine) Acknowledge(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set == nil {
		return e.snapshot(), ErrNoSession
	}
	if e.set.Phase() != session.PhaseResult {
		return e.snapshot(), ErrWrongPhase
	}
	e.set = nil
	e.notify(NoticeInfo, "Saved.")
	e.ensureDaily(ctx)
	return e.snapshot(), nil
}

// Abandon drops the active set. Nothing is granted or charged.
func (e *Engine) Abandon(_ context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set == nil {
		return e.snapshot(), ErrNoSession
	}
	if e.set.Running() {
		metrics.SetsAbandoned.Inc()
		e.log.Info("set abandoned", "set", e.set.ID(), "phase", e.set.Phase())
	}
	e.set = nil
	return e.snapshot(), nil
}

// Export returns the save record as pretty-printed JSON.
func (e *Engine) Export(_ context.Context) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Export()
}

// Import replaces the save with a previously exported document.
func (e *Engine) Import(ctx context.Context, data []byte) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set != nil {
		return e.snapshot(), ErrSessionActive
	}
	st, err := e.store.Import(ctx, data)
	if err != nil {
		return e.snapshot(), err
	}
	e.adopt(ctx, st)
	e.log.Info("save imported", "slot", e.slot, "name", st.Profile.Name, "level", st.Progress.Level)
	e.ensureDaily(ctx)
	return e.snapshot(), nil
}

// PreviewGain runs the gain calculator against current progress without
// applying anything.
func (e *Engine) PreviewGain(formAcc, repAcc, formValue float64) progression.Result {
	e.mu.Lock()
	p := e.state.Clone().Progress
	e.mu.Unlock()
	return progression.Compute(p, formAcc, repAcc, formValue, e.rules)
}

// XPTable returns the first n rows of the level curve.
func (e *Engine) XPTable(n int) []progression.LevelStep {
	return e.rules.XPTable(n)
}
