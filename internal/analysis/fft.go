package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of each frequency bin of data with
// its mean removed. Bin k corresponds to a period of len(data)/k frames.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	coeff := fourier.NewFFT(n).Coefficients(nil, centred)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod returns the period in frames of the strongest non-constant
// frequency, and its magnitude. A flat series has period 0.
func DominantPeriod(data []float64) (float64, float64) {
	ps := PowerSpectrum(data)
	best, power := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > power {
			best, power = k, ps[k]
		}
	}
	if best == 0 || power < 1e-9 {
		return 0, 0
	}
	return float64(len(data)) / float64(best), power
}
