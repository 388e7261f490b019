package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/logging"
	"github.com/san-kum/dpend/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string
	seed       int64
	dt         float64
	integrator string
	steps      int
	theta1     float64
	theta2     float64
	omega1     float64
	omega2     float64
	// live view
	frameRate int
	plain     bool
	realtime  bool
	gifPath   string
	// analysis and export
	sampleEvery  int
	perturbation float64
	ensembleRuns int
	outputPath   string
	traceOnly    bool
	braille      bool
	xAxis        int
	yAxis        int
)

// main registers the dpend commands and runs the live viewer when no
// subcommand is given. It exits with status 1 if a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "dpend",
		Short:        "double pendulum simulator",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".dpend", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "log file for the live viewer")
	pf.Int64Var(&seed, "seed", 0, "random seed for unset angles (0 picks one)")
	pf.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	pf.StringVar(&integrator, "integrator", integrators.Default, "integrator")
	pf.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	pf.Float64Var(&theta1, "theta1", 0, "inner angle in radians (random if unset)")
	pf.Float64Var(&theta2, "theta2", 0, "outer angle in radians (random if unset)")
	pf.Float64Var(&omega1, "omega1", 0, "inner angular velocity")
	pf.Float64Var(&omega2, "omega2", 0, "outer angular velocity")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate the pendulum in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
		c.Flags().BoolVar(&plain, "plain", false, "print frames as text instead of the TUI")
		c.Flags().BoolVar(&realtime, "realtime", false, "advance physics with wall time instead of one step per frame")
		c.Flags().StringVar(&gifPath, "gif", "dpend.gif", "recording output path")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&sampleEvery, "sample", 1, "record every n-th step")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot angles and velocities of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "draw a phase portrait of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis (0 θ1, 1 θ2, 2 ω1, 3 ω2)")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 2, "state index for y-axis")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final frame of a run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().BoolVar(&traceOnly, "trace-only", false, "export only the trace path")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "export the terminal canvas dot for dot")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "chart the angles of a run as png",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default <run_id>.png)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "estimate chaos and integrator drift for the configured start",
		Args:  cobra.NoArgs,
		RunE:  analyze,
	}
	analyzeCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation")
	analyzeCmd.Flags().IntVar(&ensembleRuns, "ensemble", 8, "number of perturbed copies")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write a poincaré section png")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	integratorsCmd := &cobra.Command{
		Use:   "integrators",
		Short: "list integrators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range integrators.Names() {
				marker := " "
				if name == integrators.Default {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return config.Save(args[0], cfg)
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, phaseCmd, exportSVGCmd, exportPNGCmd, exportJSONCmd, analyzeCmd, presetsCmd, integratorsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("theta1") {
		cfg.Inner.Angle = config.Float(theta1)
	}
	if flags.Changed("theta2") {
		cfg.Outer.Angle = config.Float(theta2)
	}
	if flags.Changed("omega1") {
		cfg.Inner.AngularVelocity = omega1
	}
	if flags.Changed("omega2") {
		cfg.Outer.AngularVelocity = omega2
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if f := flags.Lookup("fps"); f != nil && f.Changed {
		cfg.Display.FPS = frameRate
	}
	if f := flags.Lookup("realtime"); f != nil && f.Changed {
		cfg.Display.Realtime = realtime
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRNG(cfg *config.Config) *rand.Rand {
	return rand.New(rand.NewSource(cfg.Seed))
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Log.Level, os.Stderr)
}

func newScene(cfg *config.Config) viz.Scene {
	style := func(p config.PendulumConfig) viz.Style {
		return viz.Style{
			Radius:      p.Radius,
			StrokeWidth: float64(p.StrokeWidth),
			Color:       lipgloss.Color(p.Color),
		}
	}
	return viz.Scene{
		PivotX:     cfg.Display.PivotX,
		PivotY:     cfg.Display.PivotY,
		Scale:      cfg.Display.Scale,
		Inner:      style(cfg.Inner),
		Outer:      style(cfg.Outer),
		Theme:      viz.GetTheme(cfg.Display.Theme),
		TraceColor: lipgloss.Color(cfg.Trace.Color),
	}
}
