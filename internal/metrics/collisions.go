package metrics

import "github.com/san-kum/bounce/internal/sim"

// Collisions counts the pairs resolved over all frames.
type Collisions struct {
	name   string
	total  int
	last   int
	frames int
}

func NewCollisions() *Collisions {
	return &Collisions{name: "collisions"}
}

func (c *Collisions) Name() string { return c.name }

func (c *Collisions) Observe(f sim.Frame) {
	c.last = f.Collisions
	c.total += f.Collisions
	c.frames++
}

func (c *Collisions) Value() float64 { return float64(c.total) }

// Last returns the collisions of the latest frame.
func (c *Collisions) Last() int { return c.last }

// Rate returns the mean number of collisions per frame.
func (c *Collisions) Rate() float64 {
	if c.frames == 0 {
		return 0
	}
	return float64(c.total) / float64(c.frames)
}

func (c *Collisions) Reset() {
	c.total = 0
	c.last = 0
	c.frames = 0
}
