package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/dissolve/internal/dissolve"
	"github.com/san-kum/dissolve/internal/particles"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMesh         = "teapot"
	DefaultFrames       = 600
	DefaultFPS          = 60
	DefaultBaseSize     = 64.0
	DefaultPixelDensity = 1.0
	DefaultColor        = "#4d9bff"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Mesh      string           `yaml:"mesh"`
	MeshFile  string           `yaml:"mesh_file,omitempty"`
	Seed      int64            `yaml:"seed"`
	Frames    int              `yaml:"frames"`
	FPS       int              `yaml:"fps"`
	Workers   int              `yaml:"workers"`
	Particles particles.Params `yaml:"particles"`
	Dissolve  dissolve.Params  `yaml:"dissolve"`
	Auto      dissolve.Auto    `yaml:"auto"`
	Render    RenderConfig     `yaml:"render"`
}

type RenderConfig struct {
	BaseSize     float64 `yaml:"base_size"`
	PixelDensity float64 `yaml:"pixel_density"`
	Color        string  `yaml:"color"`
	ShowMesh     bool    `yaml:"show_mesh"`
	ShowParticle bool    `yaml:"show_particles"`
}

func DefaultConfig() *Config {
	return &Config{
		Mesh:      DefaultMesh,
		Frames:    DefaultFrames,
		FPS:       DefaultFPS,
		Workers:   1,
		Particles: particles.DefaultParams(),
		Dissolve:  dissolve.DefaultParams(),
		Auto:      dissolve.DefaultAuto(),
		Render: RenderConfig{
			BaseSize:     DefaultBaseSize,
			PixelDensity: DefaultPixelDensity,
			Color:        DefaultColor,
			ShowMesh:     true,
			ShowParticle: true,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Mesh == "" && c.MeshFile == "":
		return fmt.Errorf("%w: mesh or mesh_file is required", ErrInvalid)
	case c.Frames < 0:
		return fmt.Errorf("%w: frames must be non-negative, got %d", ErrInvalid, c.Frames)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalid, c.Workers)
	case c.Dissolve.Edge <= 0:
		return fmt.Errorf("%w: dissolve edge must be positive, got %f", ErrInvalid, c.Dissolve.Edge)
	case c.Dissolve.Frequency <= 0:
		return fmt.Errorf("%w: dissolve frequency must be positive, got %f", ErrInvalid, c.Dissolve.Frequency)
	case c.Auto.Enabled && c.Auto.Max <= c.Auto.Min:
		return fmt.Errorf("%w: auto max (%f) must exceed min (%f)", ErrInvalid, c.Auto.Max, c.Auto.Min)
	case c.Auto.Enabled && c.Auto.Rate < 0:
		return fmt.Errorf("%w: auto rate must be non-negative, got %f", ErrInvalid, c.Auto.Rate)
	}
	return nil
}

// Clone returns a deep copy; presets are shared and must not be mutated.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Knobs lists the tunable parameters accepted by SetKnob.
var Knobs = []string{"speed", "wave_amp", "vel_x", "vel_y", "progress", "edge", "freq", "amp"}

// SetKnob sets a tunable parameter by name.
func (c *Config) SetKnob(name string, v float64) error {
	switch name {
	case "speed":
		c.Particles.SpeedFactor = v
	case "wave_amp":
		c.Particles.WaveAmplitude = v
	case "vel_x":
		c.Particles.VelocityFactor.X = v
	case "vel_y":
		c.Particles.VelocityFactor.Y = v
	case "progress":
		c.Dissolve.Progress = v
	case "edge":
		c.Dissolve.Edge = v
	case "freq":
		c.Dissolve.Frequency = v
	case "amp":
		c.Dissolve.Amplitude = v
	default:
		return fmt.Errorf("%w: unknown parameter %q (available: %v)", ErrInvalid, name, Knobs)
	}
	return nil
}
