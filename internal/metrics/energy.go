package metrics

import (
	"math"

	"github.com/san-kum/bounce/internal/sim"
)

// DefaultHistory is how many energy samples Energy keeps for plotting.
const DefaultHistory = 120

// Energy tracks the total kinetic energy of the latest frame and keeps a
// bounded history of it.
type Energy struct {
	name    string
	limit   int
	current float64
	history []float64
}

func NewEnergy(limit int) *Energy {
	if limit <= 0 {
		limit = DefaultHistory
	}
	return &Energy{
		name:    "energy",
		limit:   limit,
		history: make([]float64, 0, limit),
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f sim.Frame) {
	if f.Bodies == nil {
		return
	}
	e.current = f.Bodies.KineticEnergy()
	if len(e.history) == e.limit {
		copy(e.history, e.history[1:])
		e.history = e.history[:e.limit-1]
	}
	e.history = append(e.history, e.current)
}

func (e *Energy) Value() float64 { return e.current }

// History returns the retained samples, oldest first.
func (e *Energy) History() []float64 { return e.history }

func (e *Energy) Reset() {
	e.current = 0
	e.history = e.history[:0]
}

// EnergyDrift is the largest relative change of kinetic energy from the first
// observed frame. Wall bounces and elastic collisions conserve it; only
// simultaneous collisions on a shared body under ordered resolution break it.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f sim.Frame) {
	if f.Bodies == nil {
		return
	}
	energy := f.Bodies.KineticEnergy()
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
