package session

// Timing constants of the rep phase.
const (
	RepsPerSet = 10

	MarkerStartX   = 0.08
	MarkerMinSpeed = 1.15
	MarkerSpeedVar = 0.15

	ZoneStartA  = 0.46
	ZoneWidth   = 0.12
	ZoneMinA    = 0.20
	ZoneMaxA    = 0.70
	ZoneMinSpan = 0.08
	ZoneMaxB    = 0.92
	ZoneDrift   = 0.02

	// MaxFrameDt caps one simulation step so a stalled frame pump (hidden tab,
	// GC pause) can't carry the marker across more than one bound.
	MaxFrameDt = 0.25
)

// Marker is the bouncing rep indicator on [0,1].
type Marker struct {
	X float64 `json:"x"`
	V float64 `json:"v"`
}

// Advance moves the marker by V*dt, reflecting off either bound.
// Speed is preserved across reflections.
func (m *Marker) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	m.X += m.V * dt
	if m.X > 1 {
		m.X = 1
		m.V = -m.V
	}
	if m.X < 0 {
		m.X = 0
		m.V = -m.V
	}
}

// Zone is the hit window [A,B].
type Zone struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Contains reports whether x lies inside the zone, bounds included.
func (z Zone) Contains(x float64) bool {
	return x >= z.A && x <= z.B
}

// Drift nudges the zone after a tap so consecutive reps need re-aiming.
func (z *Zone) Drift(rng RandomSource) {
	d := rng.Float64()*2*ZoneDrift - ZoneDrift
	z.A = clamp(z.A+d, ZoneMinA, ZoneMaxA)
	z.B = clamp(z.A+ZoneWidth, z.A+ZoneMinSpan, ZoneMaxB)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
