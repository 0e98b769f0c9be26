package viz

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/dissolve"
	"github.com/san-kum/dissolve/internal/particles"
)

// dotsPerPixel converts browser point sizes to braille dots. A terminal
// cell is roughly 8x16 pixels and holds 2x4 dots.
const dotsPerPixel = 0.25

// Point is one projected vertex. Size is the point diameter in viewport
// units; mesh points have size zero. A vertex in the edge band yields a mesh
// point in the edge colour at its anchor and a particle at its current
// position.
type Point struct {
	X, Y     float32
	Depth    float32
	Size     float32
	Band     dissolve.Band
	Particle bool
}

type RenderStats struct {
	Mesh      int
	Particles int
	Culled    int
}

// Renderer projects a particle set through a camera. Solid and edge vertices
// are drawn at their anchors as the mesh; edge vertices are also drawn as
// particles at their current position. Hidden vertices are skipped.
type Renderer struct {
	Camera  *Camera
	Options config.RenderConfig

	placed []float32
	points []Point
}

func NewRenderer(cam *Camera, opts config.RenderConfig) *Renderer {
	if cam == nil {
		cam = NewCamera()
	}
	return &Renderer{Camera: cam, Options: opts}
}

// Points projects the visible vertices into a w x h viewport. The returned
// slice is reused by the next call.
func (r *Renderer) Points(set *particles.Set, bands []dissolve.Band, w, h int) ([]Point, RenderStats) {
	var stats RenderStats
	r.points = r.points[:0]

	n := set.Len()
	if len(bands) != n {
		panic("viz: band count does not match particle count")
	}
	if cap(r.placed) < n*3 {
		r.placed = make([]float32, n*3)
	}
	r.placed = r.placed[:n*3]
	dissolve.Place(r.placed, set.InitialPositions(), set.CurrentPositions(), bands)

	proj := r.Camera.Projector(w, h)
	dist := set.Distances()
	anchors := set.InitialPositions()

	emit := func(buf []float32, i int, p Point) bool {
		pos := mgl32.Vec3{buf[i*3], buf[i*3+1], buf[i*3+2]}
		x, y, depth, ok := proj.Project(pos)
		if !ok {
			stats.Culled++
			return false
		}
		p.X, p.Y, p.Depth = x, y, depth
		if p.Particle {
			p.Size = float32(dissolve.PointSize(r.Options.BaseSize, r.Options.PixelDensity, float64(dist[i]), float64(depth)))
		}
		r.points = append(r.points, p)
		return true
	}

	for i, b := range bands {
		if b == dissolve.Hidden {
			continue
		}
		if r.Options.ShowMesh && emit(anchors, i, Point{Band: b}) {
			stats.Mesh++
		}
		if b == dissolve.Edge && r.Options.ShowParticle && emit(r.placed, i, Point{Band: b, Particle: true}) {
			stats.Particles++
		}
	}

	return r.points, stats
}

// Draw renders the set onto a braille canvas. The canvas is not cleared.
func (r *Renderer) Draw(c *Canvas, set *particles.Set, bands []dissolve.Band) RenderStats {
	w, h := c.Dots()
	points, stats := r.Points(set, bands, w, h)
	for _, p := range points {
		c.Disc(int(p.X), int(p.Y), float64(p.Size)*dotsPerPixel/2)
	}
	return stats
}
