package particles

import "math/rand"

const (
	MinMaxOffset    = 1.5
	MaxOffsetSpread = 5.5

	MinVelocityXY    = 0.5
	VelocityXYSpread = 0.5
	VelocityZSpread  = 0.1

	InitialDistance = 0.001
	RotationStep    = 0.01
)

// Attribute names match the shader inputs the particle material expects.
const (
	AttrPosition   = "position"
	AttrCurrentPos = "aCurrentPos"
	AttrVelocity   = "aVelocity"
	AttrOffset     = "aOffset"
	AttrDist       = "aDist"
	AttrAngle      = "aAngle"
)

type VelocityFactor struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Params are the live tuning knobs. They are read once at the start of every
// tick; the set never keeps a reference to them.
type Params struct {
	SpeedFactor    float64        `yaml:"speed_factor" json:"speed_factor"`
	VelocityFactor VelocityFactor `yaml:"velocity_factor" json:"velocity_factor"`
	WaveAmplitude  float64        `yaml:"wave_amplitude" json:"wave_amplitude"`
}

func DefaultParams() Params {
	return Params{
		SpeedFactor:    0.02,
		VelocityFactor: VelocityFactor{X: 2.5, Y: 1},
		WaveAmplitude:  0,
	}
}

// Source supplies uniform samples in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Attribute is a flat vertex-attribute view over one of the set's buffers.
type Attribute struct {
	Name     string
	ItemSize int
	Data     []float32
}

// Count is the number of items (particles) in the attribute.
func (a Attribute) Count() int {
	if a.ItemSize == 0 {
		return 0
	}
	return len(a.Data) / a.ItemSize
}
