package config

import (
	"sort"

	"github.com/san-kum/dissolve/internal/dissolve"
	"github.com/san-kum/dissolve/internal/particles"
)

var Presets = map[string]*Config{
	"calm": withDefaults(func(c *Config) {
		c.Particles = particles.Params{SpeedFactor: 0.01, VelocityFactor: particles.VelocityFactor{X: 1, Y: 1}}
		c.Dissolve.Progress = -4
	}),
	"storm": withDefaults(func(c *Config) {
		c.Particles = particles.Params{SpeedFactor: 0.05, VelocityFactor: particles.VelocityFactor{X: 2.5, Y: 1}, WaveAmplitude: 1.5}
		c.Dissolve.Edge = 2.5
		c.Dissolve.Progress = 0
	}),
	"sweep": withDefaults(func(c *Config) {
		c.Auto = dissolve.Auto{Enabled: true, Min: -18, Max: 18, Rate: 0.08}
		c.Frames = 900
	}),
	"shatter": withDefaults(func(c *Config) {
		c.Mesh = "torusknot"
		c.Particles = particles.Params{SpeedFactor: 0.08, VelocityFactor: particles.VelocityFactor{X: 4, Y: 2}, WaveAmplitude: 0.5}
		c.Dissolve = dissolve.Params{Progress: -2, Edge: 4, Frequency: 1.2, Amplitude: 12}
	}),
}

func withDefaults(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
