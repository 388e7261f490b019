package metrics

import (
	"math"

	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/sim"
)

// Singularities counts samples whose state is NaN or Inf.
type Singularities struct {
	name  string
	count int
}

func NewSingularities() *Singularities {
	return &Singularities{name: "singularities"}
}

func (s *Singularities) Name() string {
	return s.name
}

func (s *Singularities) Observe(p *pendulum.Pair, t float64) {
	if !p.Finite() {
		s.count++
	}
}

func (s *Singularities) Value() float64 {
	return float64(s.count)
}

func (s *Singularities) Reset() {
	s.count = 0
}

// MaxAngularSpeed tracks the largest |ω| of either pendulum.
type MaxAngularSpeed struct {
	name string
	max  float64
}

func NewMaxAngularSpeed() *MaxAngularSpeed {
	return &MaxAngularSpeed{name: "max_angular_speed"}
}

func (m *MaxAngularSpeed) Name() string {
	return m.name
}

func (m *MaxAngularSpeed) Observe(p *pendulum.Pair, t float64) {
	for _, w := range []float64{p.Inner.AngularVelocity, p.Outer.AngularVelocity} {
		if a := math.Abs(w); a > m.max {
			m.max = a
		}
	}
}

func (m *MaxAngularSpeed) Value() float64 {
	return m.max
}

func (m *MaxAngularSpeed) Reset() {
	m.max = 0
}

// Default returns the metrics recorded for every stored run.
func Default() []sim.Metric {
	return []sim.Metric{NewEnergy(), NewEnergyDrift(), NewSingularities(), NewMaxAngularSpeed()}
}
