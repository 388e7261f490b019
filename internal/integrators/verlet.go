package integrators

import "github.com/san-kum/dpend/internal/pendulum"

// Leapfrog is kick-drift-kick. The accelerations depend on the velocities
// through the coupling terms, so the second kick uses the half-step
// velocities.
type Leapfrog struct {
	x, dx [4]float64
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(p *pendulum.Pair) {
	const half = 2
	dt := p.Dt
	halfDt := dt * 0.5

	copy(l.x[:], p.Vector())
	derive(p, l.x[:], l.dx[:])

	for i := 0; i < half; i++ {
		l.x[half+i] += l.dx[half+i] * halfDt
	}
	for i := 0; i < half; i++ {
		l.x[i] += l.x[half+i] * dt
	}

	derive(p, l.x[:], l.dx[:])
	for i := 0; i < half; i++ {
		l.x[half+i] += l.dx[half+i] * halfDt
	}
	p.SetVector(l.x[:])
}
