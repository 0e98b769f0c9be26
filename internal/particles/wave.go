package particles

import "math"

// harmonic is one term of the wave field: the x offset samples sin(y*yFreq),
// the y offset samples sin(x*xFreq).
type harmonic struct {
	yFreq, xAmp float64
	xFreq, yAmp float64
}

var harmonics = [4]harmonic{
	{yFreq: 2, xAmp: 0.8, xFreq: 2, yAmp: 0.6},
	{yFreq: 5, xAmp: 0.2, xFreq: 1, yAmp: 0.9},
	{yFreq: 8, xAmp: 0.8, xFreq: 5, yAmp: 0.6},
	{yFreq: 3, xAmp: 0.8, xFreq: 7, yAmp: 0.6},
}

// WaveOffset returns the wave contribution to a particle's velocity at (x, y).
// z does not take part. amplitude is added to every harmonic's base amplitude.
// Terms are summed in harmonic order.
func WaveOffset(x, y, amplitude float64) (wx, wy float64) {
	for _, h := range harmonics {
		wx += math.Sin(y*h.yFreq) * (h.xAmp + amplitude)
		wy += math.Sin(x*h.xFreq) * (h.yAmp + amplitude)
	}
	return wx, wy
}
