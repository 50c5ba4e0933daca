// Package render converts body state into drawable vertex geometry.
//
// Two [Presenter] variants produce the same [Geometry]:
//
//   - host: body state is read back from the device and tessellated here
//   - device: the device writes vertices straight into a [SharedBuffer]
//     that the rasterizer reads, guarded by an Acquire/Release handshake
package render
