// Package particles simulates a field of particles bound one-to-one to the
// vertices of a mesh.
//
// Each particle is anchored at its vertex and drifts away under a base
// velocity plus a sine wave field evaluated at its current position. When a
// particle strays further than its maximum offset it snaps back to the anchor.
// All per-particle state lives in flat float32 buffers so a renderer can bind
// them as vertex attributes without copying:
//
//	set := particles.Initialize(geom.Positions, particles.NewSource(42))
//	for frame := 0; frame < n; frame++ {
//		set.Tick(params)
//		upload(set.Attributes())
//	}
//
// # Thread Safety
//
// A [Set] is owned by a single caller. [Set.TickParallel] fans the work out
// internally and returns only after every worker is done, so callers still see
// a synchronous step. Views returned by the accessors must not be modified.
package particles
