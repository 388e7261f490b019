package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpend/internal/analysis"
	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/export"
	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/logging"
	"github.com/san-kum/dpend/internal/metrics"
	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/sim"
	"github.com/san-kum/dpend/internal/storage"
	"github.com/san-kum/dpend/internal/trace"
	"github.com/san-kum/dpend/internal/viz"
	"github.com/spf13/cobra"
)

var stateNames = []string{"theta1", "theta2", "omega1", "omega2"}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pair, err := cfg.NewPair(newRNG(cfg))
	if err != nil {
		return err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}

	if plain {
		return runPlain(cmd, cfg, pair, integ)
	}

	// The TUI owns the terminal, so logs go to a file or nowhere.
	logger, closeLog, err := logging.NewFileLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := []sim.LoopOption{sim.WithIntegrator(integ), sim.WithLogger(logger)}
	if cfg.Display.Realtime {
		opts = append(opts, sim.WithFixedTimestep(cfg.Display.TimeScale, sim.DefaultMaxStepsPerTick))
	}
	loop := sim.NewLoop(pair, opts...)

	logger.Info("live view",
		"seed", cfg.Seed,
		"theta1", pair.Inner.Angle,
		"theta2", pair.Outer.Angle,
		"integrator", integ.Name())

	m := viz.NewModel(loop, newScene(cfg), viz.Options{
		FPS:           cfg.Display.FPS,
		Width:         cfg.Display.Width,
		Height:        cfg.Display.Height,
		TraceCapacity: cfg.Trace.Capacity,
		GIFPath:       gifPath,
		Logger:        logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// runPlain drives the loop on its own ticker and prints one line per frame
// until interrupted or, with --steps, until that many steps have run.
func runPlain(cmd *cobra.Command, cfg *config.Config, pair *pendulum.Pair, integ integrators.Integrator) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg)
	limit := 0
	if cmd.Flags().Changed("steps") {
		limit = cfg.Steps
	}

	var loop *sim.Loop
	printer := sim.ObserverFunc(func(f sim.Frame) {
		fmt.Fprintf(cmd.OutOrStdout(), "%8.3f %6d % .6f % .6f % .3f % .3f\n",
			f.Time, f.Step, f.Pair.Inner.Angle, f.Pair.Outer.Angle, f.X2, f.Y2)
		if limit > 0 && f.Step >= limit {
			loop.Stop()
		}
	})

	opts := []sim.LoopOption{sim.WithIntegrator(integ), sim.WithLogger(logger), sim.WithObserver(printer)}
	if cfg.Display.Realtime {
		opts = append(opts, sim.WithFixedTimestep(cfg.Display.TimeScale, sim.DefaultMaxStepsPerTick))
	}
	loop = sim.NewLoop(pair, opts...)

	fmt.Fprintf(cmd.OutOrStdout(), "# seed %d  %8s %6s %9s %9s %6s %6s\n", cfg.Seed, "time", "step", "theta1", "theta2", "x2", "y2")
	err := loop.Run(ctx, cfg.Display.FPS)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	pair, err := cfg.NewPair(newRNG(cfg))
	if err != nil {
		return err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s := sim.New(integ)
	s.SetLogger(logger)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("running simulation", "steps", cfg.Steps, "dt", cfg.Dt, "integrator", integ.Name(), "seed", cfg.Seed)
	start := time.Now()

	simCfg := sim.DefaultConfig()
	simCfg.Steps = cfg.Steps
	simCfg.SampleEvery = sampleEvery

	result, err := s.Run(ctx, pair, simCfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(runMetadata(cfg, pair), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%d samples)\n", result.StepsTaken, len(result.States))
	if len(result.Errors) > 0 {
		fmt.Printf("non-finite steps: %d\n", len(result.Errors))
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func runMetadata(cfg *config.Config, pair *pendulum.Pair) storage.RunMetadata {
	meta := func(s *pendulum.State) storage.PendulumMeta {
		return storage.PendulumMeta{
			Angle:           s.Angle,
			AngularVelocity: s.AngularVelocity,
			Mass:            s.Mass,
			Length:          s.Length,
		}
	}
	return storage.RunMetadata{
		Preset:     preset,
		Seed:       cfg.Seed,
		Dt:         pair.Dt,
		Gravity:    pair.Gravity,
		Integrator: cfg.Integrator,
		Inner:      meta(pair.Inner),
		Outer:      meta(pair.Outer),
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tDT\tINTEG\tTHETA1\tTHETA2\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4fs\t%s\t%.3f\t%.3f\t%.2e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Integrator,
			run.Inner.Angle,
			run.Outer.Angle,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, [][]float64, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s: no data", runID)
	}
	return meta, states, times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(states))

	for varIdx, name := range stateNames {
		data := make([]float64, 0, len(states))
		for i := range states {
			if varIdx < len(states[i]) && !math.IsNaN(states[i][varIdx]) && !math.IsInf(states[i][varIdx], 0) {
				data = append(data, states[i][varIdx])
			}
		}
		if len(data) == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	if xAxis < 0 || xAxis > 3 || yAxis < 0 || yAxis > 3 {
		return fmt.Errorf("axes must be between 0 and 3, got %d and %d", xAxis, yAxis)
	}
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	points := phasePoints(states, xAxis, yAxis)
	if len(points) == 0 {
		return fmt.Errorf("run %s: no finite samples", meta.ID)
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", stateNames[xAxis], stateNames[yAxis])

	canvas := viz.NewCanvas(70, 20)
	minX, maxX, minY, maxY := bounds(points)
	for _, p := range points {
		px := int(float64(canvas.SubWidth()-1) * (p.X - minX) / (maxX - minX))
		py := canvas.SubHeight() - 1 - int(float64(canvas.SubHeight()-1)*(p.Y-minY)/(maxY-minY))
		canvas.Set(px, py)
	}

	fmt.Printf("  %8.2f ┐\n", maxY)
	fmt.Print(canvas.String())
	fmt.Printf("  %8.2f ┘\n", minY)
	fmt.Printf("  %.2f … %.2f\n", minX, maxX)
	return nil
}

// phasePoints pairs two state columns, wrapping angle columns to (-π, π].
func phasePoints(states [][]float64, xi, yi int) []trace.Point {
	wrap := func(idx int, v float64) float64 {
		if idx <= analysis.Theta2 {
			return analysis.Wrap(v)
		}
		return v
	}
	points := make([]trace.Point, 0, len(states))
	for _, s := range states {
		if len(s) < 4 {
			continue
		}
		x, y := wrap(xi, s[xi]), wrap(yi, s[yi])
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		points = append(points, trace.Point{X: x, Y: y})
	}
	return points
}

func bounds(points []trace.Point) (minX, maxX, minY, maxY float64) {
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}
	return
}

// finalFrame rebuilds the last recorded pair of a run and the trace of its
// outer bob over the last capacity samples.
func finalFrame(meta *storage.RunMetadata, states [][]float64, capacity int) (*pendulum.Pair, []trace.Point, error) {
	pair, err := pendulum.NewPair(
		pendulum.Params{Mass: meta.Inner.Mass, Length: meta.Inner.Length},
		pendulum.Params{Mass: meta.Outer.Mass, Length: meta.Outer.Length},
		meta.Dt,
		pendulum.WithGravity(meta.Gravity),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", meta.ID, err)
	}

	ring := trace.NewRing(capacity)
	for _, s := range states {
		pair.SetVector(s)
		if !pair.Finite() {
			continue
		}
		_, _, x2, y2 := pair.Positions()
		ring.Push(trace.Point{X: x2, Y: y2})
	}
	pair.SetVector(states[len(states)-1])
	return pair, ring.Points(), nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	pair, trail, err := finalFrame(meta, states, cfg.Trace.Capacity)
	if err != nil {
		return err
	}

	scene := newScene(cfg)
	var svg string
	switch {
	case traceOnly:
		svg = export.TraceSVG(trail, 600, 600, string(scene.Palette()[viz.PenTrace]))
	case braille:
		canvas := viz.NewCanvas(cfg.Display.Width, cfg.Display.Height)
		ring := trace.NewRing(cfg.Trace.Capacity)
		for _, p := range trail {
			ring.Push(p)
		}
		scene.Draw(canvas, pair, ring)
		svg = export.CanvasToSVG(canvas, scene.Palette(), 4)
	default:
		svg = export.SceneSVG(pair, scene, trail, 600, 600)
	}
	if svg == "" {
		return fmt.Errorf("run %s: not enough data for svg", meta.ID)
	}

	path := outputPath
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	path := outputPath
	if path == "" {
		path = meta.ID + ".png"
	}
	if err := export.AnglesPNG(path, times, states); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func analyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	pair, err := cfg.NewPair(newRNG(cfg))
	if err != nil {
		return err
	}
	newInteg := func() integrators.Integrator {
		integ, _ := integrators.Get(cfg.Integrator)
		return integ
	}

	fmt.Printf("start: θ1=%.4f θ2=%.4f ω1=%.4f ω2=%.4f (seed %d)\n",
		pair.Inner.Angle, pair.Outer.Angle, pair.Inner.AngularVelocity, pair.Outer.AngularVelocity, cfg.Seed)
	fmt.Printf("integrator: %s, dt %.4f, %d steps (%.1fs)\n\n", cfg.Integrator, cfg.Dt, cfg.Steps, float64(cfg.Steps)*cfg.Dt)

	lambda := analysis.LyapunovExponent(pair, newInteg(), cfg.Steps, perturbation)
	verdict := "regular"
	if lambda > 0.01 {
		verdict = "chaotic"
	}
	fmt.Printf("largest lyapunov exponent: %.4f /s (%s)\n", lambda, verdict)

	energy := analysis.EnergySeries(pair, newInteg(), cfg.Steps)
	fmt.Printf("max relative energy drift: %.3e\n", analysis.MaxRelativeDrift(energy))

	angles := analysis.PhasePortrait(pair, newInteg(), analysis.Theta1, analysis.Omega1, cfg.Steps)
	series := make([]float64, len(angles))
	for i, p := range angles {
		series[i] = p.X
	}
	if f := analysis.DominantFrequency(series, cfg.Dt); f > 0 {
		fmt.Printf("dominant θ1 frequency: %.3f Hz (period %.3fs)\n", f, 1/f)
	}

	section := analysis.PoincareSection(pair, newInteg(), cfg.Steps)
	fmt.Printf("poincaré crossings: %d\n", len(section))

	if ensembleRuns > 1 {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		simCfg := sim.DefaultConfig()
		simCfg.Steps = cfg.Steps
		simCfg.SampleEvery = cfg.Steps

		results, err := sim.NewEnsemble(newInteg, ensembleRuns, perturbation).Run(ctx, pair, simCfg)
		if err != nil {
			return err
		}
		spread := 0.0
		for _, r := range results[1:] {
			if r.Final.Finite() {
				spread = math.Max(spread, math.Abs(analysis.Wrap(r.Final.Outer.Angle-results[0].Final.Outer.Angle)))
			}
		}
		fmt.Printf("ensemble: %d copies %.0e rad apart, final θ2 spread %.4f rad\n", ensembleRuns, perturbation, spread)
	}

	if len(energy) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(energy,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption("energy vs step"),
		))
	}

	if outputPath != "" {
		if err := export.PhasePNG(outputPath, "Poincaré section (θ1 = 0, ω1 > 0)", "θ2 (rad)", "ω2 (rad/s)", section); err != nil {
			return err
		}
		logger.Info("poincaré section written", "path", outputPath, "points", len(section))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTHETA1\tTHETA2\tM1/M2\tDT\tSTEPS\tINTEG")
	angle := func(a *float64) string {
		if a == nil {
			return "random"
		}
		return fmt.Sprintf("%.3f", *a)
	}
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%g/%g\t%g\t%d\t%s\n",
			name, angle(p.Inner.Angle), angle(p.Outer.Angle),
			p.Inner.Mass, p.Outer.Mass, p.Dt, p.Steps, p.Integrator)
	}
	return w.Flush()
}
