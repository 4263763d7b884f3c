package session

import (
	"errors"
	"math"
	"testing"

	"github.com/dk3682/muscle-avatar/internal/progression"
)

func TestFormAccuracy(t *testing.T) {
	cases := []struct {
		v    float64
		want float64
	}{
		{62.5, 1.0},
		{55, 0.9},
		{70, 0.9},
		{62, 1 - 0.1*(0.5/7.5)},
		{71, 0.825},
		{30, 0.225},
		{90, 0.35},
		{0, 0.15},
		{100, 0.15},
	}
	for _, tc := range cases {
		if got := FormAccuracy(tc.v); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("FormAccuracy(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

// finishForm advances a fresh set until its form timer runs out.
func finishForm(t *testing.T, s *Set) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if s.Advance(0.1) {
			break
		}
	}
	if s.Phase() != PhaseReps {
		t.Fatalf("phase = %s, want reps", s.Phase())
	}
	if s.Advance(0) {
		t.Fatal("zero dt reported a phase change")
	}
}

func TestSetStartsInForm(t *testing.T) {
	s := New(&Sequence{Values: []float64{0.5}}, progression.DefaultRules())
	v := s.View()
	if v.Phase != PhaseForm || v.FormValue != 60 || v.FormTimeLeft != 3.0 {
		t.Errorf("view = %+v", v)
	}
	if v.ID == "" {
		t.Error("set has no id")
	}
}

// TestFormToReps verifies the form timer hands over to reps with a fresh
// marker, the initial zone and the scored form.
func TestFormToReps(t *testing.T) {
	s := New(&Sequence{Values: []float64{0.5}}, progression.DefaultRules())
	if err := s.SetForm(30); err != nil {
		t.Fatal(err)
	}
	finishForm(t, s)

	v := s.View()
	if math.Abs(v.FormAcc-0.225) > 1e-9 {
		t.Errorf("formAcc = %v, want 0.225", v.FormAcc)
	}
	if v.LeakTarget != progression.LeakArms {
		t.Errorf("leakTarget = %q, want arms", v.LeakTarget)
	}
	if v.Marker.X != MarkerStartX || math.Abs(v.Marker.V-1.225) > 1e-9 {
		t.Errorf("marker = %+v, want x=0.08 v=1.225", v.Marker)
	}
	if v.Zone != (Zone{A: 0.46, B: 0.46 + ZoneWidth}) {
		t.Errorf("zone = %+v", v.Zone)
	}
	if err := s.SetForm(50); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("SetForm in reps: err = %v, want ErrWrongPhase", err)
	}
}

func TestSetFormClamps(t *testing.T) {
	s := New(&Sequence{}, progression.DefaultRules())
	_ = s.SetForm(140)
	if s.View().FormValue != 100 {
		t.Errorf("formValue = %v, want 100", s.View().FormValue)
	}
	_ = s.SetForm(-3)
	if s.View().FormValue != 0 {
		t.Errorf("formValue = %v, want 0", s.View().FormValue)
	}
}

// TestAdvanceCapsFrameDt verifies one huge frame can't skip the form phase.
func TestAdvanceCapsFrameDt(t *testing.T) {
	s := New(&Sequence{}, progression.DefaultRules())
	s.Advance(10)
	if s.Phase() != PhaseForm {
		t.Fatalf("phase = %s, want form", s.Phase())
	}
	if got := s.View().FormTimeLeft; math.Abs(got-(FormDuration-MaxFrameDt)) > 1e-9 {
		t.Errorf("formTimeLeft = %v, want %v", got, FormDuration-MaxFrameDt)
	}
}

func TestTapOutsideRepsIsRejected(t *testing.T) {
	s := New(&Sequence{}, progression.DefaultRules())
	if _, err := s.Tap(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("tap in form: err = %v, want ErrWrongPhase", err)
	}
	if s.View().RepIndex != 0 {
		t.Error("tap in form changed rep index")
	}
}

// TestTenTapsFinishSet verifies scoring, the tenth-tap transition, and that
// further taps are ignored.
func TestTenTapsFinishSet(t *testing.T) {
	s := New(&Sequence{Values: []float64{0.5}}, progression.DefaultRules())
	finishForm(t, s)

	for i := range RepsPerSet {
		if i%2 == 0 {
			s.marker.X = 0.5 // inside the zone
		} else {
			s.marker.X = 0.95
		}
		tap, err := s.Tap()
		if err != nil {
			t.Fatalf("tap %d: %v", i, err)
		}
		if tap.Hit != (i%2 == 0) {
			t.Errorf("tap %d: hit = %v", i, tap.Hit)
		}
		if tap.Done != (i == RepsPerSet-1) {
			t.Errorf("tap %d: done = %v", i, tap.Done)
		}
	}

	if s.Phase() != PhaseResult || s.Running() {
		t.Fatalf("phase = %s, want result", s.Phase())
	}
	formAcc, repAcc, formValue := s.Scores()
	if repAcc != 0.5 {
		t.Errorf("repAcc = %v, want 0.5", repAcc)
	}
	if formValue != 60 || math.Abs(formAcc-FormAccuracy(60)) > 1e-12 {
		t.Errorf("form = %v/%v", formValue, formAcc)
	}

	if _, err := s.Tap(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("11th tap: err = %v, want ErrWrongPhase", err)
	}
	if s.View().RepIndex != RepsPerSet {
		t.Errorf("repIndex = %d after extra tap", s.View().RepIndex)
	}
	if s.Advance(0.1) {
		t.Error("advance in result reported a phase change")
	}
}

func TestCompleteAttachesResult(t *testing.T) {
	s := New(&Sequence{}, progression.DefaultRules())
	s.Complete(progression.Result{Note: "ok"}, progression.Applied{NewLevel: 2})
	v := s.View()
	if v.Result == nil || v.Result.Note != "ok" || v.Applied == nil || v.Applied.NewLevel != 2 {
		t.Errorf("view = %+v", v)
	}
}
