package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/dpend/internal/pendulum"
)

var ErrInvalidConfig = errors.New("sim: invalid config")

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(p *pendulum.Pair, t float64)
	Value() float64
	Reset()
}

// Frame is what a renderer sees after each tick. Pair is the live state and
// must be treated as read-only.
type Frame struct {
	Step   int
	Time   float64
	Pair   *pendulum.Pair
	X1, Y1 float64
	X2, Y2 float64
}

// Observer is the renderer side of the loop.
type Observer interface {
	OnFrame(f Frame)
}

type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

type Config struct {
	Steps         int
	SampleEvery   int // record every n-th state; 0 or 1 records all
	ValidateState bool
	StopOnInvalid bool
}

func DefaultConfig() Config {
	return Config{
		Steps:         2000,
		SampleEvery:   1,
		ValidateState: true,
	}
}

// Result holds a recorded trajectory. States are [θ1, θ2, ω1, ω2].
type Result struct {
	States      [][]float64
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
	Final       *pendulum.Pair
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   []float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
