// Package dissolve evaluates the noise-driven dissolve front on the CPU.
//
// A vertex is classified by comparing its scaled noise value against the
// current progress: below it the surface is gone, within Edge above it the
// vertex sits in the glowing band where particles are released, and beyond
// that the surface is intact.
package dissolve
