package viz

import (
	"image/gif"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/sim"
	"github.com/san-kum/dpend/internal/trace"
)

func newPair(t *testing.T, theta1, theta2 float64) *pendulum.Pair {
	t.Helper()
	p, err := pendulum.NewPair(
		pendulum.Params{Angle: theta1, Mass: 10, Length: 100},
		pendulum.Params{Angle: theta2, Mass: 10, Length: 100},
		0.05,
	)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(3, 7)
	c.Set(-1, 0)
	c.Set(100, 100)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1 in first cell, got %U", c.Grid[0][0])
	}
	if c.Grid[1][1] != 0x2880 {
		t.Errorf("expected dot 8 in cell (1,1), got %U", c.Grid[1][1])
	}
	if !c.IsSet(3, 7) || c.IsSet(2, 7) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != blank {
				t.Fatal("canvas not blank after clear")
			}
		}
	}
	if c.Ink[1][1] != PenNone {
		t.Error("ink not cleared")
	}
}

func TestCanvasDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawLine(1, 2, 30, 25)
	if !c.IsSet(1, 2) || !c.IsSet(30, 25) {
		t.Error("line endpoints not set")
	}
}

func TestCanvasFillCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.FillCircle(20, 20, 3)
	if !c.IsSet(20, 20) || !c.IsSet(23, 20) || !c.IsSet(20, 17) {
		t.Error("circle missing centre or edge")
	}
	if c.IsSet(23, 23) {
		t.Error("corner outside radius was set")
	}
}

func TestCanvasRenderKeepsGlyphs(t *testing.T) {
	c := NewCanvas(6, 2)
	c.SetPen(PenTrace)
	c.Set(0, 0)
	c.SetPen(PenOuter)
	c.Set(10, 4)

	out := c.Render(NewScene().Styles())
	if !strings.ContainsRune(out, 0x2801) {
		t.Error("rendered output lost the trace glyph")
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected 2 rows, got %d", strings.Count(out, "\n"))
	}
	if c.Ink[1][5] != PenOuter {
		t.Errorf("expected outer pen, got %d", c.Ink[1][5])
	}
}

func TestSceneHangingPair(t *testing.T) {
	c := NewCanvas(40, 20)
	s := NewScene()
	p := newPair(t, 0, 0)

	s.Draw(c, p, nil)

	ox, oy := s.Project(c, p, 0, 0)
	if ox != 40 || oy != 20 {
		t.Errorf("pivot at (%d, %d), want (40, 20)", ox, oy)
	}
	_, _, x2, y2 := p.Positions()
	bx, by := s.Project(c, p, x2, y2)
	if bx != ox {
		t.Errorf("hanging bob should be below the pivot, got x=%d", bx)
	}
	if by >= c.SubHeight() {
		t.Errorf("auto-scale let the bob fall off the canvas: y=%d", by)
	}
	if !c.IsSet(bx, by) || !c.IsSet(ox, oy) {
		t.Error("bob or pivot not drawn")
	}
}

func TestSceneDrawsTrace(t *testing.T) {
	c := NewCanvas(40, 20)
	s := NewScene()
	p := newPair(t, 0, 0)
	p.Inner.Angle = math.NaN()

	tr := trace.NewRing(4)
	tr.Push(trace.Point{X: -50, Y: 100})
	tr.Push(trace.Point{X: 50, Y: 100})

	s.Draw(c, p, tr)
	x0, y0 := s.Project(c, p, -50, 100)
	x1, y1 := s.Project(c, p, 50, 100)
	if !c.IsSet(x0, y0) || !c.IsSet(x1, y1) {
		t.Error("trace endpoints not drawn")
	}
	if c.Ink[y0/4][x0/2] != PenTrace {
		t.Error("trace drawn with the wrong pen")
	}
}

func TestStyleRadiusDefaultsToMass(t *testing.T) {
	st := &pendulum.State{Mass: 7, Length: 1}
	if got := DefaultStyle().BobRadius(st); got != 7 {
		t.Errorf("expected radius 7, got %f", got)
	}
	if got := (Style{Radius: 2}).BobRadius(st); got != 2 {
		t.Errorf("expected radius 2, got %f", got)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "classic" {
		t.Error("unknown theme should fall back to classic")
	}
	seen := map[string]bool{}
	th := ThemeClassic
	for range Themes {
		seen[th.Name] = true
		th = NextTheme(th)
	}
	if len(seen) != len(Themes) || th.Name != "classic" {
		t.Errorf("cycling did not visit every theme once: %v", seen)
	}
}

func TestParseHex(t *testing.T) {
	r, g, b := parseHex("#ffc0cb")
	if r != 255 || g != 192 || b != 203 {
		t.Errorf("got %d,%d,%d", r, g, b)
	}
	if r, g, b := parseHex("pink"); r != 255 || g != 255 || b != 255 {
		t.Error("invalid colour should be white")
	}
}

func TestRecorderSave(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillCircle(10, 10, 2)

	r := NewRecorder(NewScene().Palette(), 25)
	if err := r.Save(filepath.Join(t.TempDir(), "x.gif")); err != ErrNoFrames {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}

	r.Capture(c)
	r.Capture(c)
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := r.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if r.Len() != 0 {
		t.Error("frames not cleared after save")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 2 || anim.Delay[0] != 4 {
		t.Errorf("expected 2 frames at delay 4, got %d at %v", len(anim.Image), anim.Delay)
	}
}

func TestModelTickAndKeys(t *testing.T) {
	loop := sim.NewLoop(newPair(t, 1.0, 2.0))
	m := NewModel(loop, NewScene(), Options{Width: 30, Height: 12, TraceCapacity: 5})

	var tm tea.Model = m
	for i := 0; i < 8; i++ {
		tm, _ = tm.Update(TickMsg{})
	}
	got := tm.(Model)
	if loop.Steps() != 8 {
		t.Fatalf("expected 8 steps, got %d", loop.Steps())
	}
	if got.trace.Len() != 5 {
		t.Errorf("trace should be capped at 5, got %d", got.trace.Len())
	}

	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	tm, _ = tm.Update(TickMsg{})
	if loop.Steps() != 8 {
		t.Errorf("paused model stepped: %d", loop.Steps())
	}

	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if tm.(Model).trace.Len() != 0 {
		t.Error("c did not clear the trace")
	}

	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if loop.Steps() != 0 || loop.Pair().Inner.Angle != 1.0 {
		t.Errorf("r did not reset: steps=%d θ1=%f", loop.Steps(), loop.Pair().Inner.Angle)
	}

	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if tm.(Model).scene.Theme.Name != "cyberpunk" {
		t.Errorf("t should move to the next theme, got %s", tm.(Model).scene.Theme.Name)
	}

	if !strings.Contains(tm.View(), "DOUBLE") && !strings.Contains(tm.View(), "PAUSED") {
		t.Error("view missing header and status")
	}

	_, cmd := tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should return a quit command")
	}
}
