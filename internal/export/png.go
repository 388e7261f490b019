package export

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/san-kum/dpend/internal/trace"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrNoData = errors.New("export: no data to plot")

const pngDPI = 150

var (
	innerColor = color.RGBA{R: 0xff, G: 0x69, B: 0xb4, A: 0xff}
	outerColor = color.RGBA{R: 0x00, G: 0x88, B: 0xff, A: 0xff}
)

// AnglesPNG plots θ1 and θ2 against time. states rows are [θ1, θ2, ω1, ω2];
// non-finite samples are skipped.
func AnglesPNG(path string, times []float64, states [][]float64) error {
	if len(times) == 0 || len(times) != len(states) {
		return fmt.Errorf("%w: %d times, %d states", ErrNoData, len(times), len(states))
	}

	p := plot.New()
	p.Title.Text = "Double pendulum angles"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "angle (rad)"
	stylePlot(p)

	for i, series := range []struct {
		name  string
		color color.Color
	}{
		{"θ1", innerColor},
		{"θ2", outerColor},
	} {
		pts := make(plotter.XYs, 0, len(times))
		for j, t := range times {
			if len(states[j]) <= i || !finite(states[j][i]) {
				continue
			}
			pts = append(pts, plotter.XY{X: t, Y: states[j][i]})
		}
		if len(pts) == 0 {
			return fmt.Errorf("%w: no finite %s samples", ErrNoData, series.name)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = series.color
		p.Add(line)
		p.Legend.Add(series.name, line)
	}
	p.Legend.Top = true

	return savePlotPNG(p, 8.0, 5.0, path)
}

// PhasePNG scatters phase portrait or Poincaré section points.
func PhasePNG(path, title, xlabel, ylabel string, points []trace.Point) error {
	if len(points) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Radius = vg.Points(1)
	sc.GlyphStyle.Color = innerColor
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	return savePlotPNG(p, 6.0, 6.0, path)
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Marker = limitedTicker(8, "%.1f")
	p.Y.Tick.Marker = limitedTicker(8, "%.1f")

	p.Add(plotter.NewGrid())
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if !finite(min) || !finite(max) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(pngDPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
