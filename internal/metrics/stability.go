package metrics

import "github.com/san-kum/bounce/internal/sim"

// Stability is the fraction of frames in which every ball lies fully inside
// the arena. Positions are never clamped, so a ball may overshoot a wall for
// a frame before its reflected velocity brings it back.
type Stability struct {
	name       string
	violations int
	samples    int
}

func NewStability() *Stability {
	return &Stability{name: "containment"}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f sim.Frame) {
	if f.Bodies == nil {
		return
	}
	s.samples++
	for _, b := range f.Bodies {
		if !b.InBounds() {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
