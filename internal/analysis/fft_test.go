package analysis

import (
	"math"
	"testing"
)

func TestDominantPeriod(t *testing.T) {
	data := make([]float64, 240)
	for i := range data {
		data[i] = 5 + 3*math.Sin(2*math.Pi*float64(i)/24)
	}

	period, power := DominantPeriod(data)
	if math.Abs(period-24) > 1e-9 {
		t.Errorf("expected period 24, got %v", period)
	}
	if power <= 0 {
		t.Errorf("expected positive power, got %v", power)
	}
}

func TestDominantPeriod_Flat(t *testing.T) {
	data := []float64{2, 2, 2, 2, 2, 2}
	if period, _ := DominantPeriod(data); period != 0 {
		t.Errorf("flat series should have no period, got %v", period)
	}
}

func TestPowerSpectrum(t *testing.T) {
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("single sample should give no spectrum")
	}

	ps := PowerSpectrum([]float64{1, 3, 1, 3, 1, 3, 1, 3})
	if len(ps) != 5 {
		t.Fatalf("expected 5 bins, got %d", len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("mean should be removed, dc bin %v", ps[0])
	}
	if ps[4] < 7.9 {
		t.Errorf("expected energy at the nyquist bin, got %v", ps)
	}
}
