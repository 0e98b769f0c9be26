package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/dissolve/internal/dissolve"
	"github.com/san-kum/dissolve/internal/particles"
	"github.com/san-kum/dissolve/internal/viz"
)

const background = "#0a0a0a"

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dots()
	width := float64(w) * scale
	height := float64(h) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", color)

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ParticlesToSVG renders one frame as seen through the renderer's camera.
// Solid mesh points are drawn faint and small, edge mesh points small in the
// full colour, and particles at their point size, farthest first.
func ParticlesToSVG(r *viz.Renderer, set *particles.Set, bands []dissolve.Band, width, height int) string {
	points, _ := r.Points(set, bands, width, height)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Depth > points[j].Depth })

	color := r.Options.Color
	if color == "" {
		color = "#ffffff"
	}

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", color)

	for _, p := range points {
		switch {
		case p.Particle:
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.2f\"/>\n", p.X, p.Y, p.Size/2)
		case p.Band == dissolve.Solid:
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"0.6\" fill-opacity=\"0.35\"/>\n", p.X, p.Y)
		default:
			fmt.Fprintf(&sb, "<circle class=\"edge\" cx=\"%.1f\" cy=\"%.1f\" r=\"0.6\"/>\n", p.X, p.Y)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots a per-frame series as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	hi += span * 0.1
	span = hi - lo
	last := float64(len(values) - 1)

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)

	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
