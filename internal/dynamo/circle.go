package dynamo

import "math"

// DefaultCirclePoints is the tessellation resolution of one ball.
const DefaultCirclePoints = 360

// UnitCircle holds precomputed directions for n points equally spaced by
// angle, starting at angle 0.
type UnitCircle struct {
	cos []float64
	sin []float64
	n   int
}

// NewUnitCircle precomputes the table. n < 3 is raised to 3.
func NewUnitCircle(n int) *UnitCircle {
	if n < 3 {
		n = 3
	}
	c := &UnitCircle{
		cos: make([]float64, n),
		sin: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		c.sin[i], c.cos[i] = math.Sincos(float64(i) * 2 * math.Pi / float64(n))
	}
	return c
}

// Points returns the number of vertices per circle.
func (c *UnitCircle) Points() int { return c.n }

// At returns the direction of vertex k.
func (c *UnitCircle) At(k int) (cos, sin float64) {
	return c.cos[k], c.sin[k]
}
