package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/logging"
	"github.com/san-kum/dpend/internal/pendulum"
)

// Clock supplies monotonic timestamps to the fixed-timestep loop.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

const DefaultMaxStepsPerTick = 8

// Loop owns the pendulum pair and drives it one tick at a time: physics
// first, then every observer. Ticks never overlap.
//
// By default a tick is exactly one physics step. WithFixedTimestep decouples
// physics from the frame rate: wall time since the previous tick, scaled,
// fills an accumulator that is drained in whole Dt steps.
type Loop struct {
	pair      *pendulum.Pair
	integ     integrators.Integrator
	observers []Observer
	clock     Clock
	logger    *slog.Logger

	fixed     bool
	timeScale float64
	maxSteps  int
	acc       float64
	last      time.Time

	steps    int
	t        float64
	singular bool

	stopOnce sync.Once
	stop     chan struct{}
}

type LoopOption func(*Loop)

func WithIntegrator(integ integrators.Integrator) LoopOption {
	return func(l *Loop) { l.integ = integ }
}

func WithObserver(o Observer) LoopOption {
	return func(l *Loop) { l.observers = append(l.observers, o) }
}

func WithClock(c Clock) LoopOption {
	return func(l *Loop) { l.clock = c }
}

func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// WithFixedTimestep enables the accumulator. timeScale is simulated seconds
// per wall second; maxSteps caps the steps one tick may take.
func WithFixedTimestep(timeScale float64, maxSteps int) LoopOption {
	return func(l *Loop) {
		l.fixed = true
		l.timeScale = timeScale
		l.maxSteps = maxSteps
	}
}

func NewLoop(pair *pendulum.Pair, opts ...LoopOption) *Loop {
	l := &Loop{
		pair:   pair,
		integ:  integrators.NewSemiImplicitEuler(),
		clock:  SystemClock{},
		logger: logging.Discard(),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.timeScale <= 0 {
		l.timeScale = 1
	}
	if l.maxSteps <= 0 {
		l.maxSteps = DefaultMaxStepsPerTick
	}
	return l
}

func (l *Loop) Pair() *pendulum.Pair               { return l.pair }
func (l *Loop) Integrator() integrators.Integrator { return l.integ }
func (l *Loop) Steps() int                         { return l.steps }
func (l *Loop) Time() float64                      { return l.t }

// Singular reports whether the state has gone non-finite.
func (l *Loop) Singular() bool { return l.singular }

// Reset swaps in a new pair and clears the counters.
func (l *Loop) Reset(pair *pendulum.Pair) {
	l.pair = pair
	l.steps, l.t, l.acc = 0, 0, 0
	l.last = time.Time{}
	l.singular = false
}

// Tick runs one driver tick and returns the number of physics steps taken.
func (l *Loop) Tick() int {
	n := 0
	if !l.fixed {
		l.step()
		n = 1
	} else {
		n = l.drain()
	}
	l.notify()
	return n
}

func (l *Loop) drain() int {
	now := l.clock.Now()
	if l.last.IsZero() {
		l.last = now
	}
	l.acc += now.Sub(l.last).Seconds() * l.timeScale
	l.last = now

	dt := l.pair.Dt
	n := 0
	for l.acc >= dt && n < l.maxSteps {
		l.step()
		l.acc -= dt
		n++
	}
	if l.acc >= dt {
		l.logger.Debug("dropping physics backlog", "backlog", l.acc, "steps", n)
		l.acc = 0
	}
	return n
}

func (l *Loop) step() {
	l.integ.Step(l.pair)
	l.steps++
	l.t += l.pair.Dt

	if !l.singular && !l.pair.Finite() {
		l.singular = true
		l.logger.Warn("numerical singularity",
			"step", l.steps,
			"time", l.t,
			"state", fmt.Sprint(l.pair.Vector()))
	}
}

func (l *Loop) notify() {
	if len(l.observers) == 0 {
		return
	}
	x1, y1, x2, y2 := l.pair.Positions()
	f := Frame{Step: l.steps, Time: l.t, Pair: l.pair, X1: x1, Y1: y1, X2: x2, Y2: y2}
	for _, o := range l.observers {
		o.OnFrame(f)
	}
}

// Run ticks at frameRate until ctx is done or Stop is called. It returns
// ctx.Err() on cancellation and nil after Stop.
func (l *Loop) Run(ctx context.Context, frameRate int) error {
	if frameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive, got %d", ErrInvalidConfig, frameRate)
	}
	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()

	l.logger.Info("loop started", "fps", frameRate, "dt", l.pair.Dt, "integrator", l.integ.Name())
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop cancelled", "steps", l.steps)
			return ctx.Err()
		case <-l.stop:
			l.logger.Info("loop stopped", "steps", l.steps)
			return nil
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
