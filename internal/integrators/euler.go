package integrators

import "github.com/san-kum/dpend/internal/pendulum"

// SemiImplicitEuler is the reference integrator: velocity first, then the
// angle with the updated velocity.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Name() string { return "euler" }

func (e *SemiImplicitEuler) Step(p *pendulum.Pair) {
	pendulum.Advance(p.Inner, p.Outer, p.Dt, p.Gravity)
}

// ExplicitEuler moves the angles with the pre-step velocities. It gains
// energy every step.
type ExplicitEuler struct {
	x, dx [4]float64
}

func NewExplicitEuler() *ExplicitEuler {
	return &ExplicitEuler{}
}

func (e *ExplicitEuler) Name() string { return "explicit-euler" }

func (e *ExplicitEuler) Step(p *pendulum.Pair) {
	copy(e.x[:], p.Vector())
	derive(p, e.x[:], e.dx[:])
	for i := range e.x {
		e.x[i] += p.Dt * e.dx[i]
	}
	p.SetVector(e.x[:])
}
