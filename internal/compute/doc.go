// Package compute provides the devices the collision passes are dispatched to.
//
// Devices are grouped by platform in a [Registry]:
//
//   - cpu: a goroutine worker pool, always available
//   - opengl: compute shaders on the GPU of the current GL context
//
// # Dispatch
//
// Every pass is data-parallel: one work item per body for the wall pass and
// per pair for the pair pass. A pass returns only after all of its items have
// completed, so the next pass always sees its writes:
//
//	backend, _ := device.Open(compute.Options{Workgroup: 256})
//	_ = backend.Upload(bodies, pairs)
//	_ = backend.WallPass(dt)
//	hits, _ := backend.PairPass()
//
// # Kernel Source
//
// The kernels live in one source file with a section per kernel; see
// [LoadSource]. The opengl device compiles it, the cpu device checks it and
// runs the equivalent Go kernels from package physics.
package compute
