package session

import "math/rand/v2"

// RandomSource yields uniform values in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandom returns a seeded source. A zero seed draws one from the runtime.
func NewRandom(seed uint64) RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sequence replays fixed values in order, repeating the last one. For tests
// and deterministic replays.
type Sequence struct {
	Values []float64
	i      int
}

func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[min(s.i, len(s.Values)-1)]
	s.i++
	return v
}
