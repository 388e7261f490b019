package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/trace"
)

// Style holds the rendering-only attributes of one pendulum. Physics never
// sees it.
type Style struct {
	Radius      float64        // bob radius in length units; 0 means the bob mass
	StrokeWidth float64        // arm width in length units
	Color       lipgloss.Color // empty means the theme colour
}

const DefaultStrokeWidth = 3

// DefaultStyle draws a bob as large as its mass with a 3-unit arm.
func DefaultStyle() Style {
	return Style{StrokeWidth: DefaultStrokeWidth}
}

// Scene projects a pair onto a canvas. The pivot sits at (PivotX, PivotY)
// as fractions of the canvas; Scale is dots per length unit, 0 fits both
// arms hanging straight down.
type Scene struct {
	PivotX, PivotY float64
	Scale          float64
	Inner, Outer   Style
	Theme          Theme
	TraceColor     lipgloss.Color
}

func NewScene() Scene {
	return Scene{
		PivotX: 0.5,
		PivotY: 0.25,
		Inner:  DefaultStyle(),
		Outer:  DefaultStyle(),
		Theme:  ThemeClassic,
	}
}

// scale returns dots per length unit for the given pair and canvas.
func (s Scene) scale(c *Canvas, p *pendulum.Pair) float64 {
	if s.Scale > 0 {
		return s.Scale
	}
	reach := p.Inner.Length + p.Outer.Length
	if reach <= 0 {
		return 1
	}
	down := float64(c.SubHeight()) * (1 - s.PivotY)
	side := float64(c.SubWidth()) * math.Min(s.PivotX, 1-s.PivotX)
	return 0.95 * math.Min(down, side) / reach
}

// Project maps a position relative to the pivot (y down) to canvas dots.
func (s Scene) Project(c *Canvas, p *pendulum.Pair, x, y float64) (int, int) {
	k := s.scale(c, p)
	px := float64(c.SubWidth())*s.PivotX + x*k
	py := float64(c.SubHeight())*s.PivotY + y*k
	return int(math.Round(px)), int(math.Round(py))
}

// Draw clears c and renders the trace, both arms, both bobs and the pivot.
// Trace points are pivot-relative positions of the outer bob. A non-finite
// pair draws only the trace.
func (s Scene) Draw(c *Canvas, p *pendulum.Pair, tr *trace.Ring) {
	c.Clear()
	k := s.scale(c, p)

	if tr != nil {
		c.SetPen(PenTrace)
		var px, py int
		tr.Each(func(i int, pt trace.Point) {
			x, y := s.Project(c, p, pt.X, pt.Y)
			if i > 0 {
				c.DrawLine(px, py, x, y)
			} else {
				c.Set(x, y)
			}
			px, py = x, y
		})
	}

	if !p.Finite() {
		return
	}

	x1, y1, x2, y2 := p.Positions()
	ox, oy := s.Project(c, p, 0, 0)
	ax, ay := s.Project(c, p, x1, y1)
	bx, by := s.Project(c, p, x2, y2)

	c.SetPen(PenInner)
	c.DrawThickLine(ox, oy, ax, ay, dots(s.Inner.StrokeWidth, k))
	c.FillCircle(ax, ay, s.bobDots(c, s.Inner.BobRadius(p.Inner), k))

	c.SetPen(PenOuter)
	c.DrawThickLine(ax, ay, bx, by, dots(s.Outer.StrokeWidth, k))
	c.FillCircle(bx, by, s.bobDots(c, s.Outer.BobRadius(p.Outer), k))

	c.SetPen(PenPivot)
	c.Set(ox, oy)
}

// Styles returns the lipgloss style for each pen.
func (s Scene) Styles() [penCount]lipgloss.Style {
	var styles [penCount]lipgloss.Style
	styles[PenTrace] = lipgloss.NewStyle().Foreground(pick(s.TraceColor, s.Theme.Trace))
	styles[PenInner] = lipgloss.NewStyle().Foreground(pick(s.Inner.Color, s.Theme.Arm))
	styles[PenOuter] = lipgloss.NewStyle().Foreground(pick(s.Outer.Color, s.Theme.Bob))
	styles[PenPivot] = lipgloss.NewStyle().Foreground(s.Theme.Pivot)
	return styles
}

// Palette returns the GIF palette indexed by pen, black background first.
func (s Scene) Palette() []lipgloss.Color {
	return []lipgloss.Color{
		PenNone:  "#000000",
		PenTrace: pick(s.TraceColor, s.Theme.Trace),
		PenInner: pick(s.Inner.Color, s.Theme.Arm),
		PenOuter: pick(s.Outer.Color, s.Theme.Bob),
		PenPivot: s.Theme.Pivot,
	}
}

// BobRadius is Radius, or the bob mass when Radius is unset.
func (st Style) BobRadius(ps *pendulum.State) float64 {
	if st.Radius > 0 {
		return st.Radius
	}
	return ps.Mass
}

// bobDots keeps a bob within a quarter of the canvas height.
func (s Scene) bobDots(c *Canvas, r, k float64) int {
	return min(dots(r, k), max(1, c.SubHeight()/4))
}

// dots converts a length to canvas dots, at least one.
func dots(length, k float64) int {
	return max(1, int(math.Round(length*k)))
}

func pick(c, fallback lipgloss.Color) lipgloss.Color {
	if c != "" {
		return c
	}
	return fallback
}
