package compute

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/render"
)

// DefaultWorkgroup bounds how many work items one worker handles at a time.
const DefaultWorkgroup = 256

var errClosed = errors.New("device closed")

// ResolveMode chooses how the pair pass treats bodies shared by several
// concurrently colliding pairs.
type ResolveMode string

const (
	// ResolveOrdered applies each pair's response atomically in no defined
	// order; the last pair to touch a body wins.
	ResolveOrdered ResolveMode = "ordered"

	// ResolveAccumulate computes every pair against the same velocities and
	// sums the deltas per body before applying them.
	ResolveAccumulate ResolveMode = "accumulate"
)

// ParseResolve validates a configured resolve mode.
func ParseResolve(s string) (ResolveMode, error) {
	switch ResolveMode(s) {
	case ResolveOrdered, ResolveAccumulate:
		return ResolveMode(s), nil
	}
	return "", &dynamo.InputError{Field: "resolve", Value: s, Reason: "must be ordered or accumulate"}
}

type Options struct {
	Workgroup int
	Workers   int
	Resolve   ResolveMode
	Points    int
	Logger    *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Workgroup <= 0 {
		o.Workgroup = DefaultWorkgroup
	}
	if o.Resolve == "" {
		o.Resolve = ResolveOrdered
	}
	if o.Points <= 0 {
		o.Points = dynamo.DefaultCirclePoints
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Backend is an opened device holding the mirror of the body state.
type Backend interface {
	render.Source

	Name() string

	// Upload mirrors the bodies and the pair index into device memory.
	Upload(bodies dynamo.State, pairs dynamo.PairIndex) error

	// Build prepares the kernels from src. A nil src keeps the built-in ones
	// where the device has them.
	Build(src *KernelSource) error

	WallPass(dt float64) error

	// PairPass returns the number of pairs that collided.
	PairPass() (int, error)

	// SharedBuffer returns the vertex buffer shared with the rasterizer.
	SharedBuffer() (*render.SharedBuffer, error)

	Close() error
}

// ResidentDrawer is implemented by devices that can draw geometry whose
// vertices never left device memory.
type ResidentDrawer interface {
	DrawResident(g *render.Geometry) error
}
