package mesh

import "github.com/go-gl/mathgl/mgl32"

// Newell's teapot in the compact form: ten bicubic patches over 127 control
// points, z up. The rim, body, lid and bottom patches are mirrored into all
// four quadrants and the handle and spout across y, giving the usual 32.
var (
	quadrants = [][2]float32{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	halves    = [][2]float32{{1, 1}, {1, -1}}
)

var teapotPatches = [...]struct {
	idx     [16]int
	mirrors [][2]float32
}{
	{[16]int{102, 103, 104, 105, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, quadrants},
	{[16]int{12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27}, quadrants},
	{[16]int{24, 25, 26, 27, 29, 30, 31, 32, 33, 34, 35, 36, 37, 38, 39, 40}, quadrants},
	{[16]int{96, 96, 96, 96, 97, 98, 99, 100, 101, 101, 101, 101, 0, 1, 2, 3}, quadrants},
	{[16]int{0, 1, 2, 3, 106, 107, 108, 109, 110, 111, 112, 113, 114, 115, 116, 117}, quadrants},
	{[16]int{118, 118, 118, 118, 124, 122, 119, 121, 123, 126, 125, 120, 40, 39, 38, 37}, quadrants},
	{[16]int{41, 42, 43, 44, 45, 46, 47, 48, 49, 50, 51, 52, 53, 54, 55, 56}, halves},
	{[16]int{53, 54, 55, 56, 57, 58, 59, 60, 61, 62, 63, 64, 28, 65, 66, 67}, halves},
	{[16]int{68, 69, 70, 71, 72, 73, 74, 75, 76, 77, 78, 79, 80, 81, 82, 83}, halves},
	{[16]int{80, 81, 82, 83, 84, 85, 86, 87, 88, 89, 90, 91, 92, 93, 94, 95}, halves},
}

var teapotPoints = [...]mgl32.Vec3{
	{0.2, 0, 2.7}, {0.2, -0.112, 2.7}, {0.112, -0.2, 2.7}, {0, -0.2, 2.7},
	{1.3375, 0, 2.53125}, {1.3375, -0.749, 2.53125}, {0.749, -1.3375, 2.53125}, {0, -1.3375, 2.53125},
	{1.4375, 0, 2.53125}, {1.4375, -0.805, 2.53125}, {0.805, -1.4375, 2.53125}, {0, -1.4375, 2.53125},
	{1.5, 0, 2.4}, {1.5, -0.84, 2.4}, {0.84, -1.5, 2.4}, {0, -1.5, 2.4},
	{1.75, 0, 1.875}, {1.75, -0.98, 1.875}, {0.98, -1.75, 1.875}, {0, -1.75, 1.875},
	{2, 0, 1.35}, {2, -1.12, 1.35}, {1.12, -2, 1.35}, {0, -2, 1.35},
	{2, 0, 0.9}, {2, -1.12, 0.9}, {1.12, -2, 0.9}, {0, -2, 0.9},
	{-2, 0, 0.9},
	{2, 0, 0.45}, {2, -1.12, 0.45}, {1.12, -2, 0.45}, {0, -2, 0.45},
	{1.5, 0, 0.225}, {1.5, -0.84, 0.225}, {0.84, -1.5, 0.225}, {0, -1.5, 0.225},
	{1.5, 0, 0.15}, {1.5, -0.84, 0.15}, {0.84, -1.5, 0.15}, {0, -1.5, 0.15},
	{-1.6, 0, 2.025}, {-1.6, -0.3, 2.025}, {-1.5, -0.3, 2.25}, {-1.5, 0, 2.25},
	{-2.3, 0, 2.025}, {-2.3, -0.3, 2.025}, {-2.5, -0.3, 2.25}, {-2.5, 0, 2.25},
	{-2.7, 0, 2.025}, {-2.7, -0.3, 2.025}, {-3, -0.3, 2.25}, {-3, 0, 2.25},
	{-2.7, 0, 1.8}, {-2.7, -0.3, 1.8}, {-3, -0.3, 1.8}, {-3, 0, 1.8},
	{-2.7, 0, 1.575}, {-2.7, -0.3, 1.575}, {-3, -0.3, 1.35}, {-3, 0, 1.35},
	{-2.5, 0, 1.125}, {-2.5, -0.3, 1.125}, {-2.65, -0.3, 0.9375}, {-2.65, 0, 0.9375},
	{-2, -0.3, 0.9}, {-1.9, -0.3, 0.6}, {-1.9, 0, 0.6},
	{1.7, 0, 1.425}, {1.7, -0.66, 1.425}, {1.7, -0.66, 0.6}, {1.7, 0, 0.6},
	{2.6, 0, 1.425}, {2.6, -0.66, 1.425}, {3.1, -0.66, 0.825}, {3.1, 0, 0.825},
	{2.3, 0, 2.1}, {2.3, -0.25, 2.1}, {2.4, -0.25, 2.025}, {2.4, 0, 2.025},
	{2.7, 0, 2.4}, {2.7, -0.25, 2.4}, {3.3, -0.25, 2.4}, {3.3, 0, 2.4},
	{2.8, 0, 2.475}, {2.8, -0.25, 2.475}, {3.525, -0.25, 2.49375}, {3.525, 0, 2.49375},
	{2.9, 0, 2.475}, {2.9, -0.15, 2.475}, {3.45, -0.15, 2.5125}, {3.45, 0, 2.5125},
	{2.8, 0, 2.4}, {2.8, -0.15, 2.4}, {3.2, -0.15, 2.4}, {3.2, 0, 2.4},
	{0, 0, 3.15}, {0.8, 0, 3.15}, {0.8, -0.45, 3.15}, {0.45, -0.8, 3.15}, {0, -0.8, 3.15},
	{0, 0, 2.85},
	{1.4, 0, 2.4}, {1.4, -0.784, 2.4}, {0.784, -1.4, 2.4}, {0, -1.4, 2.4},
	{0.4, 0, 2.55}, {0.4, -0.224, 2.55}, {0.224, -0.4, 2.55}, {0, -0.4, 2.55},
	{1.3, 0, 2.55}, {1.3, -0.728, 2.55}, {0.728, -1.3, 2.55}, {0, -1.3, 2.55},
	{1.3, 0, 2.4}, {1.3, -0.728, 2.4}, {0.728, -1.3, 2.4}, {0, -1.3, 2.4},
	{0, 0, 0}, {1.425, -0.798, 0}, {1.5, 0, 0.075}, {1.425, 0, 0},
	{0.798, -1.425, 0}, {0, -1.5, 0.075}, {0, -1.425, 0}, {1.5, -0.84, 0.075},
	{0.84, -1.5, 0.075},
}

const (
	teapotHeight = 3.15
	// Blinn's proportions squash the digitised height.
	teapotBlinn = 1.3
)

// Teapot tessellates the Utah teapot at segments steps per patch edge,
// emitting (segments+1)^2 vertices per patch with seams duplicated. size is
// the distance from the spout axis to the back of the handle; the teapot is
// y up and centred vertically.
func Teapot(size float32, segments int) *Geometry {
	segments = max(1, segments)
	side := segments + 1

	g := &Geometry{
		Name:      "teapot",
		Positions: make([]float32, 0, 32*side*side*3),
	}

	scale := size / 3

	for _, p := range teapotPatches {
		var ctrl [16]mgl32.Vec3
		for k, i := range p.idx {
			ctrl[k] = teapotPoints[i]
		}

		for _, flip := range p.mirrors {
			fx, fy := flip[0], flip[1]

			for i := 0; i <= segments; i++ {
				u := float32(i) / float32(segments)
				for j := 0; j <= segments; j++ {
					v := float32(j) / float32(segments)
					q := bezierPatch(&ctrl, u, v)

					g.push(mgl32.Vec3{
						fx * q[0] * scale,
						(q[2] - teapotHeight/2) / teapotBlinn * scale,
						-fy * q[1] * scale,
					})
				}
			}
		}
	}

	return g
}

func bezierPatch(ctrl *[16]mgl32.Vec3, u, v float32) mgl32.Vec3 {
	bu, bv := bernstein(u), bernstein(v)

	var out mgl32.Vec3
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out = out.Add(ctrl[r*4+c].Mul(bu[r] * bv[c]))
		}
	}
	return out
}

func bernstein(t float32) [4]float32 {
	s := 1 - t
	return [4]float32{s * s * s, 3 * t * s * s, 3 * t * t * s, t * t * t}
}
