// Package session runs one training set: a timed form phase, ten timed reps,
// then a result. Sets are ephemeral and never persisted.
package session

import (
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/dk3682/muscle-avatar/internal/progression"
)

// Phase is the stage of a set.
type Phase string

const (
	PhaseForm   Phase = "form"
	PhaseReps   Phase = "reps"
	PhaseResult Phase = "result"
)

// Form phase constants.
const (
	FormStartValue = 60.0
	FormDuration   = 3.0 // seconds

	FormTargetLow  = 55.0
	FormTargetHigh = 70.0
)

// ErrWrongPhase is returned for input that doesn't apply to the current phase.
// The set is left unchanged.
var ErrWrongPhase = errors.New("not allowed in current phase")

// FormAccuracy scores a form value against the target range. Inside the range
// it yields 0.90–1.00 peaking at the center; outside it falls off with
// distance to the nearest bound, never below 0.15 or above 0.85.
func FormAccuracy(v float64) float64 {
	center := (FormTargetLow + FormTargetHigh) / 2
	half := (FormTargetHigh - FormTargetLow) / 2
	if v >= FormTargetLow && v <= FormTargetHigh {
		return clamp(1-0.10*(math.Abs(v-center)/half), 0, 1)
	}
	dist := v - FormTargetHigh
	if v < FormTargetLow {
		dist = FormTargetLow - v
	}
	return clamp(0.85-dist/40, 0.15, 0.85)
}

// Set is the state of one set in progress.
type Set struct {
	id    uuid.UUID
	phase Phase
	rng   RandomSource
	rules progression.Rules

	formValue    float64
	formTimeLeft float64
	formAcc      float64
	leakTarget   string

	repIndex int
	hits     int
	repAcc   float64
	marker   Marker
	zone     Zone

	result  *progression.Result
	applied *progression.Applied
}

// New starts a set in the form phase.
func New(rng RandomSource, rules progression.Rules) *Set {
	return &Set{
		id:           uuid.New(),
		phase:        PhaseForm,
		rng:          rng,
		rules:        rules,
		formValue:    FormStartValue,
		formTimeLeft: FormDuration,
		marker:       Marker{X: MarkerStartX},
		zone:         Zone{A: ZoneStartA, B: ZoneStartA + ZoneWidth},
	}
}

func (s *Set) ID() uuid.UUID { return s.id }
func (s *Set) Phase() Phase  { return s.phase }

// Running reports whether the set still needs frames.
func (s *Set) Running() bool {
	return s.phase == PhaseForm || s.phase == PhaseReps
}

// SetForm records the slider position. Only valid during the form phase.
func (s *Set) SetForm(v float64) error {
	if s.phase != PhaseForm {
		return ErrWrongPhase
	}
	s.formValue = clamp(v, 0, 100)
	return nil
}

// Advance steps the set by dt seconds and reports whether the phase changed.
func (s *Set) Advance(dt float64) bool {
	if dt <= 0 || math.IsNaN(dt) {
		return false
	}
	dt = math.Min(dt, MaxFrameDt)

	switch s.phase {
	case PhaseForm:
		s.formTimeLeft -= dt
		if s.formTimeLeft <= 0 {
			s.formTimeLeft = 0
			s.beginReps()
			return true
		}
	case PhaseReps:
		s.marker.Advance(dt)
	}
	return false
}

func (s *Set) beginReps() {
	s.formAcc = FormAccuracy(s.formValue)
	s.leakTarget = s.rules.LeakTarget(s.formValue)

	s.phase = PhaseReps
	s.repIndex = 0
	s.hits = 0
	s.marker = Marker{X: MarkerStartX, V: MarkerMinSpeed + s.rng.Float64()*MarkerSpeedVar}
	s.zone = Zone{A: ZoneStartA, B: ZoneStartA + ZoneWidth}
}

// Tap is the outcome of one scored rep.
type Tap struct {
	Hit      bool `json:"hit"`
	RepIndex int  `json:"repIndex"`
	Hits     int  `json:"hits"`
	Done     bool `json:"done"`
}

// Tap scores a rep against the marker's current position. The tenth tap
// ends the rep phase; the caller then computes gains and calls Complete.
func (s *Set) Tap() (Tap, error) {
	if s.phase != PhaseReps {
		return Tap{}, ErrWrongPhase
	}

	hit := s.zone.Contains(s.marker.X)
	if hit {
		s.hits++
	}
	s.repIndex++
	s.zone.Drift(s.rng)

	if s.repIndex >= RepsPerSet {
		s.repAcc = clamp(float64(s.hits)/RepsPerSet, 0, 1)
		s.phase = PhaseResult
	}
	return Tap{Hit: hit, RepIndex: s.repIndex, Hits: s.hits, Done: s.phase == PhaseResult}, nil
}

// Scores returns the inputs for the gain calculator.
func (s *Set) Scores() (formAcc, repAcc, formValue float64) {
	return s.formAcc, s.repAcc, s.formValue
}

// Complete attaches the applied result to a finished set.
func (s *Set) Complete(res progression.Result, applied progression.Applied) {
	s.result = &res
	s.applied = &applied
}

// View is a read-only copy of the set for rendering.
type View struct {
	ID           string               `json:"id"`
	Phase        Phase                `json:"phase"`
	FormValue    float64              `json:"formValue"`
	FormTimeLeft float64              `json:"formTimeLeft"`
	FormAcc      float64              `json:"formAcc"`
	LeakTarget   string               `json:"leakTarget,omitempty"`
	RepIndex     int                  `json:"repIndex"`
	RepsTotal    int                  `json:"repsTotal"`
	Hits         int                  `json:"hits"`
	RepAcc       float64              `json:"repAcc"`
	Marker       Marker               `json:"marker"`
	Zone         Zone                 `json:"zone"`
	Result       *progression.Result  `json:"result,omitempty"`
	Applied      *progression.Applied `json:"applied,omitempty"`
}

// View snapshots the set.
func (s *Set) View() View {
	return View{
		ID:           s.id.String(),
		Phase:        s.phase,
		FormValue:    s.formValue,
		FormTimeLeft: s.formTimeLeft,
		FormAcc:      s.formAcc,
		LeakTarget:   s.leakTarget,
		RepIndex:     s.repIndex,
		RepsTotal:    RepsPerSet,
		Hits:         s.hits,
		RepAcc:       s.repAcc,
		Marker:       s.marker,
		Zone:         s.zone,
		Result:       s.result,
		Applied:      s.applied,
	}
}
