package metrics

import "github.com/san-kum/bounce/internal/sim"

// Metric accumulates one number over the frames of a run.
type Metric interface {
	Name() string
	Observe(f sim.Frame)
	Value() float64
	Reset()
}

// Recorder feeds every frame to a set of metrics. It is a sim.Observer.
type Recorder struct {
	metrics []Metric
}

func NewRecorder(ms ...Metric) *Recorder {
	return &Recorder{metrics: ms}
}

// Default returns the recorder used by the viewers: energy, energy drift,
// momentum, collisions and containment.
func Default() *Recorder {
	return NewRecorder(
		NewEnergy(DefaultHistory),
		NewEnergyDrift(),
		NewMomentum(),
		NewCollisions(),
		NewStability(),
	)
}

func (r *Recorder) OnFrame(f sim.Frame) {
	for _, m := range r.metrics {
		m.Observe(f)
	}
}

func (r *Recorder) Metrics() []Metric { return r.metrics }

// Get returns the metric called name, or nil.
func (r *Recorder) Get(name string) Metric {
	for _, m := range r.metrics {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

func (r *Recorder) Values() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Recorder) Reset() {
	for _, m := range r.metrics {
		m.Reset()
	}
}
