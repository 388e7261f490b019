package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/dpend/internal/pendulum"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

// Integrator advances a pendulum pair by its fixed Dt, in place.
type Integrator interface {
	Name() string
	Step(p *pendulum.Pair)
}

const Default = "euler"

var registry = map[string]func() Integrator{
	"euler":          func() Integrator { return NewSemiImplicitEuler() },
	"explicit-euler": func() Integrator { return NewExplicitEuler() },
	"rk4":            func() Integrator { return NewRK4() },
	"leapfrog":       func() Integrator { return NewLeapfrog() },
}

// Get returns a fresh integrator by name. Integrators with scratch buffers
// must not be shared between pairs stepped concurrently.
func Get(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownIntegrator, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// derive writes [ω1, ω2, α1, α2] for the phase vector x = [θ1, θ2, ω1, ω2]
// into dst.
func derive(p *pendulum.Pair, x, dst []float64) {
	inner := pendulum.State{Angle: x[0], AngularVelocity: x[2], Mass: p.Inner.Mass, Length: p.Inner.Length}
	outer := pendulum.State{Angle: x[1], AngularVelocity: x[3], Mass: p.Outer.Mass, Length: p.Outer.Length}
	a1, a2 := pendulum.Accelerations(inner, outer, p.Gravity)
	dst[0], dst[1], dst[2], dst[3] = x[2], x[3], a1, a2
}
