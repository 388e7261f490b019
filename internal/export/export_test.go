package export

import (
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/trace"
	"github.com/san-kum/dpend/internal/viz"
)

func TestTraceSVG(t *testing.T) {
	if TraceSVG([]trace.Point{{X: 1, Y: 1}}, 100, 100, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}

	svg := TraceSVG([]trace.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}}, 120, 60, "#808080")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete svg document")
	}
	if !strings.Contains(svg, `stroke="#808080"`) {
		t.Error("stroke colour missing")
	}
	// padding is 10% of each range on both sides
	if !strings.Contains(svg, "M10.0,5.0") {
		t.Errorf("unexpected first point in %s", svg)
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments, got %d", strings.Count(svg, " L"))
	}
}

func TestSceneSVGReferenceGeometry(t *testing.T) {
	pair, err := pendulum.NewPair(
		pendulum.Params{Angle: 0, Mass: 10, Length: 100},
		pendulum.Params{Angle: math.Pi / 2, Mass: 5, Length: 100},
		0.05,
	)
	if err != nil {
		t.Fatal(err)
	}

	scene := viz.NewScene()
	scene.Scale = 1
	svg := SceneSVG(pair, scene, []trace.Point{{X: 0, Y: 200}, {X: 100, Y: 100}}, 600, 600)

	// pivot at (300, 150), inner bob straight down, outer bob to the right
	for _, want := range []string{
		`<line x1="300.0" y1="150.0" x2="300.0" y2="250.0" stroke="#ffc0cb" stroke-width="3.0"/>`,
		`<circle cx="300.0" cy="250.0" r="10.0" fill="#ffc0cb"/>`,
		`<circle cx="400.0" cy="250.0" r="5.0" fill="#ffc0cb"/>`,
		`points="300.0,350.0 400.0,250.0"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestSceneSVGSkipsNonFinitePair(t *testing.T) {
	pair, _ := pendulum.NewPair(
		pendulum.Params{Mass: 1, Length: 1},
		pendulum.Params{Mass: 1, Length: 1},
		0.01,
	)
	pair.Outer.Angle = math.Inf(1)
	svg := SceneSVG(pair, viz.NewScene(), nil, 100, 100)
	if strings.Contains(svg, "<line") || strings.Contains(svg, "<circle") {
		t.Error("non-finite pair should not be drawn")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.SetPen(viz.PenTrace)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := CanvasToSVG(c, viz.NewScene().Palette(), 2)
	if strings.Count(svg, "<circle") != 2 {
		t.Errorf("expected 2 dots, got %d", strings.Count(svg, "<circle"))
	}
	if !strings.Contains(svg, `fill="#808080"`) {
		t.Error("trace pen colour missing")
	}
	if CanvasToSVG(nil, nil, 1) != "" {
		t.Error("nil canvas should give empty output")
	}
}

func TestAnglesPNG(t *testing.T) {
	times := []float64{0, 0.05, 0.1, 0.15}
	states := [][]float64{
		{1, 2, 0, 0},
		{0.9, 2.1, -1, 1},
		{math.NaN(), 2.2, 0, 0},
		{0.7, 2.3, -1, 1},
	}
	path := filepath.Join(t.TempDir(), "plots", "angles.png")
	if err := AnglesPNG(path, times, states); err != nil {
		t.Fatalf("AnglesPNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8*pngDPI || b.Dy() != 5*pngDPI {
		t.Errorf("unexpected size %v", b)
	}
}

func TestAnglesPNGRejectsMismatch(t *testing.T) {
	err := AnglesPNG(filepath.Join(t.TempDir(), "x.png"), []float64{0}, nil)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestPhasePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phase.png")
	pts := []trace.Point{{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: -1}}
	if err := PhasePNG(path, "phase", "θ1", "ω1", pts); err != nil {
		t.Fatalf("PhasePNG: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("png not written")
	}
	if err := PhasePNG(path, "", "", "", nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
