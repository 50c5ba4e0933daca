package physics

import (
	"github.com/san-kum/bounce/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Overlapping reports whether two balls intersect.
func Overlapping(a, b dynamo.Body) bool {
	rr := a.Radius + b.Radius
	return r2.Norm2(r2.Sub(a.Center, b.Center)) < rr*rr
}

// Impulse returns the elastic-collision velocity changes for a and b along
// their line of centers. Every overlapping pair responds, whichever way it is
// moving; ok is false only when the balls do not overlap or share a center.
func Impulse(a, b dynamo.Body) (dva, dvb r2.Vec, ok bool) {
	if !Overlapping(a, b) {
		return r2.Vec{}, r2.Vec{}, false
	}

	dx := r2.Sub(a.Center, b.Center)
	d2 := r2.Norm2(dx)
	if d2 == 0 {
		return r2.Vec{}, r2.Vec{}, false
	}

	ma, mb := float64(a.Mass), float64(b.Mass)
	k := r2.Dot(r2.Sub(a.Velocity, b.Velocity), dx) / d2
	// <vb-va, xb-xa> equals <va-vb, xa-xb>, so both deltas share k.
	dva = r2.Scale(-2*mb/(ma+mb)*k, dx)
	dvb = r2.Scale(2*ma/(ma+mb)*k, dx)
	return dva, dvb, true
}

// Collide applies the elastic response to a and b in place and reports
// whether they collided.
func Collide(a, b *dynamo.Body) bool {
	dva, dvb, ok := Impulse(*a, *b)
	if !ok {
		return false
	}
	a.Velocity = r2.Add(a.Velocity, dva)
	b.Velocity = r2.Add(b.Velocity, dvb)
	return true
}

// PairPass applies Collide sequentially to pairs[start:end] in index order and
// returns the number of collisions.
func PairPass(bodies dynamo.State, pairs dynamo.PairIndex, start, end int) int {
	hits := 0
	for _, p := range pairs[start:end] {
		if Collide(&bodies[p.I], &bodies[p.J]) {
			hits++
		}
	}
	return hits
}

// AccumulatePass evaluates every pair against the velocities at the start of
// the pass and applies the summed deltas afterwards. The result does not
// depend on pair order.
func AccumulatePass(bodies dynamo.State, pairs dynamo.PairIndex) int {
	dv := make([]r2.Vec, len(bodies))
	hits := 0
	for _, p := range pairs {
		dva, dvb, ok := Impulse(bodies[p.I], bodies[p.J])
		if !ok {
			continue
		}
		dv[p.I] = r2.Add(dv[p.I], dva)
		dv[p.J] = r2.Add(dv[p.J], dvb)
		hits++
	}
	for i := range bodies {
		bodies[i].Velocity = r2.Add(bodies[i].Velocity, dv[i])
	}
	return hits
}
