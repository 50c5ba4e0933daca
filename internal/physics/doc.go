// Package physics implements the per-item kernels of the two collision passes.
//
// Each kernel works on a single work item so a device can run any number of
// them concurrently:
//
//   - [WallBounce]: one body, integrates position and reflects off the arena walls
//   - [Collide]: one pair, applies the elastic collision response in place
//   - [Impulse]: one pair, computes the same response as velocity deltas
//
// # Energy Conservation
//
// The pair response conserves momentum and kinetic energy. Use
// [dynamo.State.KineticEnergy] to check it:
//
//	before := state.KineticEnergy()
//	physics.Collide(&state[0], &state[1])
//	drift := state.KineticEnergy() - before
package physics
