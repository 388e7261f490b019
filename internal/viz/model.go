package viz

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpend/internal/logging"
	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/sim"
	"github.com/san-kum/dpend/internal/trace"
)

const (
	historyCapacity = 600
	statsWidth      = 46
	minCanvasWidth  = 20
	minCanvasHeight = 8
)

type TickMsg time.Time

type Options struct {
	FPS           int
	Width, Height int // canvas size in cells; shrunk to fit the terminal
	TraceCapacity int
	GIFPath       string
	Logger        *slog.Logger
}

// Model is the live viewer. The loop owns the physics; the model only ticks
// it and draws what it sees.
type Model struct {
	loop    *sim.Loop
	initial *pendulum.Pair

	scene  Scene
	canvas *Canvas
	trace  *trace.Ring

	energy []float64
	angles []float64
	e0     float64
	drift  float64

	fps, maxW, maxH int
	running         bool
	recording       bool
	recorder        *Recorder
	gifPath         string
	showHelp        bool
	message         string
	logger          *slog.Logger
}

// NewModel builds a viewer around loop. The pair the loop holds now is what
// "r" resets to.
func NewModel(loop *sim.Loop, scene Scene, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 36
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "dpend.gif"
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	pair := loop.Pair()
	return Model{
		loop:     loop,
		initial:  pair.Clone(),
		scene:    scene,
		canvas:   NewCanvas(opts.Width, opts.Height),
		trace:    trace.NewRing(opts.TraceCapacity),
		energy:   make([]float64, 0, historyCapacity),
		angles:   make([]float64, 0, historyCapacity),
		e0:       pair.Energy(),
		fps:      opts.FPS,
		maxW:     opts.Width,
		maxH:     opts.Height,
		running:  true,
		recorder: NewRecorder(scene.Palette(), opts.FPS),
		gifPath:  opts.GIFPath,
		logger:   opts.Logger,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "c":
			m.trace.Reset()
		case "t":
			m.scene.Theme = NextTheme(m.scene.Theme)
			m.scene.Inner.Color, m.scene.Outer.Color, m.scene.TraceColor = "", "", ""
			m.recorder.SetPalette(m.scene.Palette())
			m.message = "theme: " + m.scene.Theme.Name
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
			} else {
				m.recording = true
				m.recorder.Reset()
				m.message = "recording"
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(minCanvasWidth, min(m.maxW, msg.Width-statsWidth-6))
		h := max(minCanvasHeight, min(m.maxH, msg.Height-4))
		if w != m.canvas.Width || h != m.canvas.Height {
			m.canvas = NewCanvas(w, h)
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.scene.Draw(m.canvas, m.loop.Pair(), m.trace)
		if m.recording {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

// step ticks the loop once and records the outer bob.
func (m *Model) step() {
	if m.loop.Tick() == 0 {
		return
	}
	p := m.loop.Pair()
	if !p.Finite() {
		return
	}

	_, _, x2, y2 := p.Positions()
	m.trace.Push(trace.Point{X: x2, Y: y2})

	e := p.Energy()
	if m.e0 != 0 {
		m.drift = math.Max(m.drift, math.Abs(e-m.e0)/math.Abs(m.e0))
	}
	m.energy = appendBounded(m.energy, e)
	m.angles = appendBounded(m.angles, p.Outer.Angle)
}

func appendBounded(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// reset restores the initial state and clears every history.
func (m *Model) reset() {
	m.loop.Reset(m.initial.Clone())
	m.trace.Reset()
	m.energy = m.energy[:0]
	m.angles = m.angles[:0]
	m.drift = 0
	m.message = "reset"
}

func (m *Model) saveGIF() {
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.logger.Error("save recording", "path", m.gifPath, "err", err)
		m.message = "recording failed: " + err.Error()
		return
	}
	m.logger.Info("recording saved", "path", m.gifPath)
	m.message = "saved " + m.gifPath
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render(m.scene.Styles()))
	statsView := statsStyle.Render(m.stats())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func (m Model) stats() string {
	p := m.loop.Pair()
	th := m.scene.Theme

	var s strings.Builder
	s.WriteString(GradientText("DOUBLE PENDULUM", th.Arm, th.Accent) + "\n\n")

	switch {
	case m.recording:
		s.WriteString(StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Len())))
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n")
	if m.loop.Singular() {
		s.WriteString(lipgloss.NewStyle().Foreground(th.Error).Render("numerical singularity") + "\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.Precision(1),
			asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Foreground(th.Accent).Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.loop.Time()))
	row("Step", fmt.Sprintf("%d", m.loop.Steps()))
	row("θ1 / ω1", fmt.Sprintf("%+.3f / %+.3f", p.Inner.Angle, p.Inner.AngularVelocity))
	row("θ2 / ω2", fmt.Sprintf("%+.3f / %+.3f", p.Outer.Angle, p.Outer.AngularVelocity))
	row("Energy", fmt.Sprintf("%.2f", p.Energy()))
	row("Drift", fmt.Sprintf("%.3f%%", m.drift*100))
	row("Integrator", m.loop.Integrator().Name())
	row("Trace", fmt.Sprintf("%d/%d", m.trace.Len(), m.trace.Cap()))
	row("Theme", th.Name)
	s.WriteString(labelStyle.Render("θ2") + SparklineChart(m.angles, 24) + "\n")

	if m.message != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(th.Muted).Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(24) + "\nSP:Pause R:Reset C:Clear\nT:Theme  G:Record  Q:Quit\n?:Help"))
	return s.String()
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset to initial state   ║
║  C        - Clear trace              ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`
