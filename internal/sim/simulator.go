package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/logging"
	"github.com/san-kum/dpend/internal/pendulum"
)

// Simulator runs headless, recorded simulations.
type Simulator struct {
	integrator integrators.Integrator
	metrics    []Metric
	observers  []Observer
	logger     *slog.Logger
}

func New(integ integrators.Integrator) *Simulator {
	if integ == nil {
		integ = integrators.NewSemiImplicitEuler()
	}
	return &Simulator{
		integrator: integ,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     logging.Discard(),
	}
}

func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)   { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *slog.Logger) { s.logger = l }

func (s *Simulator) Integrator() integrators.Integrator {
	return s.integrator
}

// Run steps a copy of pair cfg.Steps times. The input pair is not modified.
func (s *Simulator) Run(ctx context.Context, pair *pendulum.Pair, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}

	samples := cfg.Steps/every + 1
	result := &Result{
		States:  make([][]float64, 0, samples),
		Times:   make([]float64, 0, samples),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	p := pair.Clone()
	t := 0.0
	result.States = append(result.States, p.Vector())
	result.Times = append(result.Times, t)
	initialEnergy := p.Energy()
	s.observe(p, t)

	s.logger.Debug("simulation started",
		"integrator", s.integrator.Name(), "steps", cfg.Steps, "dt", p.Dt)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Final = p
			return result, ctx.Err()
		default:
		}

		s.integrator.Step(p)
		t += p.Dt
		result.StepsTaken++

		s.observe(p, t)

		for _, obs := range s.observers {
			x1, y1, x2, y2 := p.Positions()
			obs.OnFrame(Frame{Step: result.StepsTaken, Time: t, Pair: p, X1: x1, Y1: y1, X2: x2, Y2: y2})
		}

		if (i+1)%every == 0 || i == cfg.Steps-1 {
			result.States = append(result.States, p.Vector())
			result.Times = append(result.Times, t)
		}

		if cfg.ValidateState && !p.Finite() {
			err := &SimulationError{Step: i, Time: t, State: p.Vector(), Wrapped: pendulum.ErrSingular}
			result.Errors = append(result.Errors, err)
			s.logger.Warn("numerical singularity", "step", i, "time", t)
			if cfg.StopOnInvalid {
				break
			}
		}
	}

	if finalEnergy := p.Energy(); initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = p

	s.logger.Debug("simulation finished",
		"steps", result.StepsTaken, "energy_drift", result.EnergyDrift, "errors", len(result.Errors))

	return result, nil
}

func (s *Simulator) observe(p *pendulum.Pair, t float64) {
	for _, m := range s.metrics {
		m.Observe(p, t)
	}
}

func validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval must not be negative, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}
