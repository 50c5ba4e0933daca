package sim

import (
	"time"

	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/render"
)

// DefaultInterval is the minimum wall-clock time between two steps.
const DefaultInterval = time.Second / 30

// Phase is the state of the frame driver.
type Phase int

const (
	Waiting Phase = iota
	Stepping
)

func (p Phase) String() string {
	if p == Stepping {
		return "stepping"
	}
	return "waiting"
}

// Frame is the outcome of one step.
type Frame struct {
	Index      int
	Dt         float64
	Time       float64
	Collisions int

	// Geometry is owned by the presenter and only valid until the next step.
	Geometry *render.Geometry

	// Bodies is the read-back body state. It is nil unless an observer is
	// registered.
	Bodies dynamo.State
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// Clock abstracts wall-clock time for the driver.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns the system clock.
func RealClock() Clock { return realClock{} }
