package metrics

import (
	"github.com/san-kum/dissolve/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// series collects one sample per frame.
type series struct {
	name    string
	samples []float64
	sample  func(f sim.Frame) float64
}

func (s *series) Name() string { return s.name }

func (s *series) Observe(f sim.Frame) {
	s.samples = append(s.samples, s.sample(f))
}

func (s *series) Value() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	return stat.Mean(s.samples, nil)
}

func (s *series) Reset() { s.samples = s.samples[:0] }

// NewResetRate averages the number of particles snapped back per frame.
func NewResetRate() sim.Metric {
	return &series{name: "reset_rate", sample: func(f sim.Frame) float64 { return float64(f.Resets) }}
}

// NewMeanDistance averages the per-frame mean anchor distance.
func NewMeanDistance() sim.Metric {
	return &series{name: "mean_distance", sample: func(f sim.Frame) float64 { return f.MeanDist }}
}

// NewEdgeCoverage averages the fraction of particles inside the edge band.
func NewEdgeCoverage() sim.Metric {
	return &series{name: "edge_coverage", sample: func(f sim.Frame) float64 {
		total := f.Hidden + f.Edge + f.Solid
		if total == 0 {
			return 0
		}
		return float64(f.Edge) / float64(total)
	}}
}

type PeakResets struct {
	series
}

func NewPeakResets() *PeakResets {
	return &PeakResets{series{name: "peak_resets", sample: func(f sim.Frame) float64 { return float64(f.Resets) }}}
}

func (p *PeakResets) Value() float64 {
	if len(p.samples) == 0 {
		return 0
	}
	return floats.Max(p.samples)
}

// Default returns fresh instances of every frame metric.
func Default() []sim.Metric {
	return []sim.Metric{NewResetRate(), NewMeanDistance(), NewEdgeCoverage(), NewPeakResets()}
}

// Constructors is Default in constructor form, for ensembles.
func Constructors() []func() sim.Metric {
	return []func() sim.Metric{
		NewResetRate,
		NewMeanDistance,
		NewEdgeCoverage,
		func() sim.Metric { return NewPeakResets() },
	}
}
