package metrics

import (
	"github.com/san-kum/bounce/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// Momentum is the magnitude of the total momentum in the latest frame.
type Momentum struct {
	name  string
	value float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(f sim.Frame) {
	if f.Bodies == nil {
		return
	}
	m.value = r2.Norm(f.Bodies.Momentum())
}

func (m *Momentum) Value() float64 { return m.value }

func (m *Momentum) Reset() { m.value = 0 }
