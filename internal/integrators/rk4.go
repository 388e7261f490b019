package integrators

import "github.com/san-kum/dpend/internal/pendulum"

type RK4 struct {
	k1, k2, k3, k4 [4]float64
	x, scratch     [4]float64
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(p *pendulum.Pair) {
	dt := p.Dt
	copy(r.x[:], p.Vector())

	derive(p, r.x[:], r.k1[:])

	for i := range r.x {
		r.scratch[i] = r.x[i] + dt*0.5*r.k1[i]
	}
	derive(p, r.scratch[:], r.k2[:])

	for i := range r.x {
		r.scratch[i] = r.x[i] + dt*0.5*r.k2[i]
	}
	derive(p, r.scratch[:], r.k3[:])

	for i := range r.x {
		r.scratch[i] = r.x[i] + dt*r.k3[i]
	}
	derive(p, r.scratch[:], r.k4[:])

	dt6 := dt / 6.0
	for i := range r.x {
		r.x[i] += dt6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
	p.SetVector(r.x[:])
}
