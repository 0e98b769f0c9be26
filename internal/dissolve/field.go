package dissolve

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

type Params struct {
	Progress  float64 `yaml:"progress" json:"progress"`
	Edge      float64 `yaml:"edge" json:"edge"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
}

func DefaultParams() Params {
	return Params{
		Progress:  -7,
		Edge:      0.8,
		Frequency: 0.45,
		Amplitude: 16,
	}
}

// Noise is a 3D gradient noise in roughly [-1, 1].
type Noise interface {
	Eval3(x, y, z float64) float64
}

func NewNoise(seed int64) Noise {
	return opensimplex.New(seed)
}

type Band uint8

const (
	// Hidden: the surface has dissolved away and no particle is drawn.
	Hidden Band = iota
	// Edge: inside the burning band; the particle is drawn at its simulated position.
	Edge
	// Solid: the surface is intact and the particle stays hidden.
	Solid
)

func (b Band) String() string {
	switch b {
	case Hidden:
		return "hidden"
	case Edge:
		return "edge"
	case Solid:
		return "solid"
	default:
		return fmt.Sprintf("band(%d)", uint8(b))
	}
}

// BandOf places a scaled noise value relative to the dissolve front.
func BandOf(noise, progress, edge float64) Band {
	switch {
	case noise < progress:
		return Hidden
	case noise <= progress+edge:
		return Edge
	default:
		return Solid
	}
}

type Counts struct {
	Hidden, Edge, Solid int
}

func (c Counts) Total() int { return c.Hidden + c.Edge + c.Solid }

// Field caches the scaled noise value of every anchor vertex. Noise depends
// only on the anchors, frequency and amplitude, so progress and edge changes
// are a cheap reclassification.
type Field struct {
	noise     Noise
	positions []float32
	values    []float32

	freq, amp float64
	valid     bool
}

func NewField(n Noise) *Field {
	return &Field{noise: n}
}

// Bind points the field at a new anchor buffer (packed xyz). The buffer is
// read, never written.
func (f *Field) Bind(positions []float32) {
	f.positions = positions
	f.values = make([]float32, len(positions)/3)
	f.valid = false
}

func (f *Field) Len() int { return len(f.values) }

// Values returns the per-vertex noise for p, recomputing it when frequency
// or amplitude changed since the last call.
func (f *Field) Values(p Params) []float32 {
	if !f.valid || f.freq != p.Frequency || f.amp != p.Amplitude {
		f.refresh(p.Frequency, p.Amplitude)
	}
	return f.values
}

func (f *Field) refresh(freq, amp float64) {
	for i := range f.values {
		x := float64(f.positions[i*3]) * freq
		y := float64(f.positions[i*3+1]) * freq
		z := float64(f.positions[i*3+2]) * freq
		f.values[i] = float32(f.noise.Eval3(x, y, z) * amp)
	}
	f.freq, f.amp = freq, amp
	f.valid = true
}

// Classify writes the band of every vertex into dst, which must have Len
// entries.
func (f *Field) Classify(dst []Band, p Params) Counts {
	if len(dst) != len(f.values) {
		panic(fmt.Sprintf("dissolve: band buffer has %d entries, field has %d", len(dst), len(f.values)))
	}

	var c Counts
	for i, v := range f.Values(p) {
		b := BandOf(float64(v), p.Progress, p.Edge)
		dst[i] = b
		switch b {
		case Hidden:
			c.Hidden++
		case Edge:
			c.Edge++
		default:
			c.Solid++
		}
	}
	return c
}

// Place writes the draw position of every particle into dst: the simulated
// position inside the edge band, the anchor elsewhere.
func Place(dst, anchors, current []float32, bands []Band) {
	for i, b := range bands {
		src := anchors
		if b == Edge {
			src = current
		}
		copy(dst[i*3:i*3+3], src[i*3:i*3+3])
	}
}

// PointSize mirrors the particle vertex shader: sprites shrink as they drift
// from their anchor and with view depth.
func PointSize(baseSize, pixelDensity, dist, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	size := baseSize * pixelDensity
	size /= dist + 1
	return size / depth
}
