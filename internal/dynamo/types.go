package dynamo

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// MinRadius is the smallest radius class; the others are its multiples.
	MinRadius = 0.05

	// RadiusClasses is the number of allowed radii.
	RadiusClasses = 3

	// BodyAlpha is the blend alpha every ball is drawn with.
	BodyAlpha = 0.25
)

// Color is a linear RGBA color in [0,1].
type Color struct {
	R, G, B, A float32
}

// classColors maps radius class k (radius = k*MinRadius) to its display color.
var classColors = [RadiusClasses + 1]Color{
	1: {R: 0.5, G: 1.0, B: 0.5, A: BodyAlpha},
	2: {R: 0.5, G: 0.5, B: 1.0, A: BodyAlpha},
	3: {R: 1.0, G: 0.5, B: 0.5, A: BodyAlpha},
}

// Body is a single ball. Radius, Mass and Color are fixed at creation.
type Body struct {
	Center   r2.Vec
	Velocity r2.Vec
	Radius   float64
	Mass     int
	Color    Color
}

// RadiusClass returns k for radius = k*MinRadius, or 0 when the radius is not
// one of the allowed classes.
func RadiusClass(radius float64) int {
	for k := 1; k <= RadiusClasses; k++ {
		if math.Abs(radius-float64(k)*MinRadius) < 1e-9 {
			return k
		}
	}
	return 0
}

// ClassRadius returns the radius of class k.
func ClassRadius(k int) float64 {
	return float64(k) * MinRadius
}

// MassOf derives the collision weight of a radius.
func MassOf(radius float64) int {
	return int(math.Round(radius * 100))
}

// NewBody builds a body, deriving its mass and color from the radius.
func NewBody(radius float64, center, velocity r2.Vec) (Body, error) {
	k := RadiusClass(radius)
	if k == 0 {
		return Body{}, fmt.Errorf("%w: %w", ErrInvalidRadius, &InputError{
			Field:  "radius",
			Value:  strconv.FormatFloat(radius, 'g', -1, 64),
			Reason: fmt.Sprintf("must be one of %v", AllowedRadii()),
		})
	}
	r := ClassRadius(k)
	return Body{
		Center:   center,
		Velocity: velocity,
		Radius:   r,
		Mass:     MassOf(r),
		Color:    classColors[k],
	}, nil
}

// MustBody is NewBody for literals known to be valid.
func MustBody(radius float64, center, velocity r2.Vec) Body {
	b, err := NewBody(radius, center, velocity)
	if err != nil {
		panic(err)
	}
	return b
}

// AllowedRadii lists the radius classes in ascending order.
func AllowedRadii() []float64 {
	radii := make([]float64, RadiusClasses)
	for k := 1; k <= RadiusClasses; k++ {
		radii[k-1] = ClassRadius(k)
	}
	return radii
}

// KineticEnergy returns ½·m·|v|².
func (b Body) KineticEnergy() float64 {
	return 0.5 * float64(b.Mass) * r2.Norm2(b.Velocity)
}

// InBounds reports whether the body lies entirely inside the arena.
func (b Body) InBounds() bool {
	return math.Abs(b.Center.X) <= 1-b.Radius && math.Abs(b.Center.Y) <= 1-b.Radius
}

// State is the authoritative body array.
type State []Body

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, b := range s {
		for _, v := range [4]float64{b.Center.X, b.Center.Y, b.Velocity.X, b.Velocity.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// KineticEnergy returns Σ ½·m·|v|² over all bodies.
func (s State) KineticEnergy() float64 {
	e := 0.0
	for _, b := range s {
		e += b.KineticEnergy()
	}
	return e
}

// Momentum returns Σ m·v over all bodies.
func (s State) Momentum() r2.Vec {
	var p r2.Vec
	for _, b := range s {
		p = r2.Add(p, r2.Scale(float64(b.Mass), b.Velocity))
	}
	return p
}
