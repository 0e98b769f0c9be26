// Package analysis looks for periodicity in per-frame run series.
//
// Particles reset after travelling past their max offset, so a run's reset
// count oscillates with a period set by the speed and offset range:
//
//	period, power := analysis.DominantPeriod(resets)
package analysis
