package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/trace"
	"github.com/san-kum/dpend/internal/viz"
	"gonum.org/v1/gonum/floats"
)

const background = "#0a0a0a"

// CanvasToSVG converts a Braille canvas to SVG format, one circle per dot
// in its pen colour from palette.
func CanvasToSVG(canvas *viz.Canvas, palette []lipgloss.Color, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height)

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			fill := "#00ff00"
			if pen := int(canvas.Ink[row][col]); pen < len(palette) {
				fill = string(palette[pen])
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					x, y := col*2+dx, row*4+dy
					if !canvas.IsSet(x, y) {
						continue
					}
					cx := float64(x)*scale + scale/2
					cy := float64(y)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, fill)
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TraceSVG fits the trace into a width x height image and draws it as one
// path. Fewer than two points give an empty string.
func TraceSVG(points []trace.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, strokeColor)

	// y already grows downward
	for i := range points {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := (ys[i] - minY) / rangeY * float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// SceneSVG draws one frame: the trace as a polyline, both arms with their
// stroke width, both bobs with their radius. Geometry follows the scene's
// pivot fractions and scale; Scale 0 fits the arms to the image.
func SceneSVG(pair *pendulum.Pair, scene viz.Scene, trail []trace.Point, width, height int) string {
	w, h := float64(width), float64(height)
	k := scene.Scale
	if k <= 0 {
		reach := pair.Inner.Length + pair.Outer.Length
		k = 0.95 * math.Min(h*(1-scene.PivotY), w*math.Min(scene.PivotX, 1-scene.PivotX)) / reach
	}
	ox, oy := w*scene.PivotX, h*scene.PivotY
	project := func(x, y float64) (float64, float64) { return ox + x*k, oy + y*k }

	palette := scene.Palette()

	var sb strings.Builder
	writeHeader(&sb, w, h)

	if len(trail) > 1 {
		fmt.Fprintf(&sb, `<polyline fill="none" stroke="%s" stroke-width="1" points="`, palette[viz.PenTrace])
		for i, p := range trail {
			x, y := project(p.X, p.Y)
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		}
		sb.WriteString("\"/>\n")
	}

	if pair.Finite() {
		x1, y1, x2, y2 := pair.Positions()
		ax, ay := project(x1, y1)
		bx, by := project(x2, y2)

		arms := []struct {
			x0, y0, x1, y1 float64
			style          viz.Style
			state          *pendulum.State
			color          lipgloss.Color
		}{
			{ox, oy, ax, ay, scene.Inner, pair.Inner, palette[viz.PenInner]},
			{ax, ay, bx, by, scene.Outer, pair.Outer, palette[viz.PenOuter]},
		}
		for _, a := range arms {
			fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"%s\" stroke-width=\"%.1f\"/>\n",
				a.x0, a.y0, a.x1, a.y1, a.color, a.style.StrokeWidth*k)
		}
		for _, a := range arms {
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n",
				a.x1, a.y1, a.style.BobRadius(a.state)*k, a.color)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
