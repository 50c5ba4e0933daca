package sim

import (
	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/physics"
)

// Step advances a copy of bodies by dt on the host: wall pass, then pair pass.
// Ordered mode applies the pairs in index order, which is one of the orders a
// device may choose. It returns the new state and the number of collisions.
func Step(bodies dynamo.State, pairs dynamo.PairIndex, dt float64, mode compute.ResolveMode) (dynamo.State, int) {
	next := bodies.Clone()
	physics.WallPass(next, dt, 0, len(next))
	if mode == compute.ResolveAccumulate {
		return next, physics.AccumulatePass(next, pairs)
	}
	return next, physics.PairPass(next, pairs, 0, len(pairs))
}
