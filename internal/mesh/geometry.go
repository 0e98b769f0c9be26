package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is a named vertex position buffer, packed xyz.
type Geometry struct {
	Name      string
	Positions []float32
}

func (g *Geometry) Count() int {
	if g == nil {
		return 0
	}
	return len(g.Positions) / 3
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (g *Geometry) Bounds() (lo, hi mgl32.Vec3) {
	if g.Count() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo = mgl32.Vec3{g.Positions[0], g.Positions[1], g.Positions[2]}
	hi = lo
	for i := 3; i < len(g.Positions); i += 3 {
		for a := 0; a < 3; a++ {
			v := g.Positions[i+a]
			if v < lo[a] {
				lo[a] = v
			}
			if v > hi[a] {
				hi[a] = v
			}
		}
	}
	return lo, hi
}

func (g *Geometry) push(v mgl32.Vec3) {
	g.Positions = append(g.Positions, v[0], v[1], v[2])
}

// Sphere builds a UV sphere. Seam and pole vertices are duplicated so the
// vertex count is (widthSegments+1)*(heightSegments+1).
func Sphere(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(3, widthSegments)
	heightSegments = max(2, heightSegments)

	g := &Geometry{
		Name:      "sphere",
		Positions: make([]float32, 0, (widthSegments+1)*(heightSegments+1)*3),
	}

	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		theta := v * math32.Pi
		sinTheta, cosTheta := math32.Sin(theta), math32.Cos(theta)

		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			phi := u * 2 * math32.Pi

			g.push(mgl32.Vec3{
				-radius * math32.Cos(phi) * sinTheta,
				radius * cosTheta,
				radius * math32.Sin(phi) * sinTheta,
			})
		}
	}

	return g
}

// Torus builds a ring in the xy plane around the z axis.
func Torus(radius, tube float32, radialSegments, tubularSegments int) *Geometry {
	radialSegments = max(2, radialSegments)
	tubularSegments = max(3, tubularSegments)

	g := &Geometry{
		Name:      "torus",
		Positions: make([]float32, 0, (radialSegments+1)*(tubularSegments+1)*3),
	}

	for j := 0; j <= radialSegments; j++ {
		v := float32(j) / float32(radialSegments) * 2 * math32.Pi
		for i := 0; i <= tubularSegments; i++ {
			u := float32(i) / float32(tubularSegments) * 2 * math32.Pi

			ring := radius + tube*math32.Cos(v)
			g.push(mgl32.Vec3{
				ring * math32.Cos(u),
				ring * math32.Sin(u),
				tube * math32.Sin(v),
			})
		}
	}

	return g
}

// TorusKnot builds a tube swept along a (p, q) torus knot.
func TorusKnot(radius, tube float32, tubularSegments, radialSegments, p, q int) *Geometry {
	tubularSegments = max(3, tubularSegments)
	radialSegments = max(3, radialSegments)

	g := &Geometry{
		Name:      "torusknot",
		Positions: make([]float32, 0, (radialSegments+1)*(tubularSegments+1)*3),
	}

	for i := 0; i <= tubularSegments; i++ {
		u := float32(i) / float32(tubularSegments) * float32(p) * 2 * math32.Pi

		p1 := knotPoint(u, p, q, radius)
		p2 := knotPoint(u+0.01, p, q, radius)

		t := p2.Sub(p1)
		n := p2.Add(p1)
		b := t.Cross(n)
		n = b.Cross(t)
		b = b.Normalize()
		n = n.Normalize()

		for j := 0; j <= radialSegments; j++ {
			v := float32(j) / float32(radialSegments) * 2 * math32.Pi
			cx := -tube * math32.Cos(v)
			cy := tube * math32.Sin(v)

			g.push(p1.Add(n.Mul(cx)).Add(b.Mul(cy)))
		}
	}

	return g
}

func knotPoint(u float32, p, q int, radius float32) mgl32.Vec3 {
	cu, su := math32.Cos(u), math32.Sin(u)
	quOverP := float32(q) / float32(p) * u
	cs := math32.Cos(quOverP)

	return mgl32.Vec3{
		radius * (2 + cs) * 0.5 * cu,
		radius * (2 + cs) * su * 0.5,
		radius * math32.Sin(quOverP) * 0.5,
	}
}
