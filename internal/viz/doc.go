// Package viz renders a running dissolve simulation in the terminal.
//
//   - [Camera]: orbiting perspective camera built on mgl32
//   - [Renderer]: projects solid mesh points and edge particles
//   - [Canvas]: braille dot grid the renderer draws into
//   - [Model]: Bubble Tea live view with a parameter panel
//
// # Key Bindings
//
//	Space    - Pause/Resume simulation
//	Tab/↑/↓  - Select and tune a parameter
//	M        - Next mesh
//	A        - Toggle auto dissolve
//	P / S    - Toggle particles / solid mesh
//	X / Y    - Orbit camera
//	+ / -    - Zoom
//	R        - Restore parameters
//	T        - Cycle color themes
package viz
