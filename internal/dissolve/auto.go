package dissolve

// Auto sweeps the dissolve progress back and forth between Min and Max,
// moving Rate per frame.
type Auto struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Min     float64 `yaml:"min" json:"min"`
	Max     float64 `yaml:"max" json:"max"`
	Rate    float64 `yaml:"rate" json:"rate"`

	dir float64
}

func DefaultAuto() Auto {
	return Auto{
		Enabled: false,
		Min:     -18,
		Max:     18,
		Rate:    0.05,
	}
}

// Step returns the progress for the next frame.
func (a *Auto) Step(progress float64) float64 {
	if !a.Enabled || a.Rate == 0 || a.Max <= a.Min {
		return progress
	}
	if a.dir == 0 {
		a.dir = 1
	}

	progress += a.Rate * a.dir
	switch {
	case progress >= a.Max:
		progress = a.Max
		a.dir = -1
	case progress <= a.Min:
		progress = a.Min
		a.dir = 1
	}
	return progress
}

// Direction is +1 while sweeping up, -1 while sweeping down.
func (a *Auto) Direction() float64 {
	if a.dir == 0 {
		return 1
	}
	return a.dir
}
