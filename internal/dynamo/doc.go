// Package dynamo provides the core data model of the bouncing-ball simulation.
//
// The package defines the host-side state that every other layer mirrors or
// consumes:
//
//   - [Body]: one ball (center, velocity, radius, mass, color)
//   - [State]: the authoritative body array owned by the simulation
//   - [PairIndex]: every unordered body pair, built once and never mutated
//   - [UnitCircle]: precomputed vertex directions used for tessellation
//
// # Example
//
//	bodies := dynamo.Spawn(10, rand.New(rand.NewSource(42)))
//	pairs := dynamo.BuildPairs(len(bodies))
//
// # Thread Safety
//
// State is a plain slice. The compute devices decide how concurrent passes
// touch it; see package compute.
package dynamo
