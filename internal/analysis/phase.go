package analysis

import (
	"math"

	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/trace"
)

// Phase vector components.
const (
	Theta1 = iota
	Theta2
	Omega1
	Omega2
)

// PhasePortrait steps a copy of the pair and records two components of
// [θ1, θ2, ω1, ω2] after every step. Angles are wrapped to (-π, π] so
// rotating trajectories stay on the plot.
func PhasePortrait(pair *pendulum.Pair, integ integrators.Integrator, xIdx, yIdx, steps int) []trace.Point {
	if pair == nil || xIdx < 0 || xIdx > Omega2 || yIdx < 0 || yIdx > Omega2 || steps <= 0 {
		return nil
	}
	if integ == nil {
		integ = integrators.NewSemiImplicitEuler()
	}

	p := pair.Clone()
	points := make([]trace.Point, 0, steps)
	for i := 0; i < steps; i++ {
		integ.Step(p)
		x := p.Vector()
		points = append(points, trace.Point{
			X: component(x, xIdx),
			Y: component(x, yIdx),
		})
	}
	return points
}

// PoincareSection records (θ2, ω2) each time the inner pendulum swings
// through the downward vertical moving right (θ1 crosses 0 mod 2π with
// ω1 > 0). Crossings are linearly interpolated between steps.
func PoincareSection(pair *pendulum.Pair, integ integrators.Integrator, steps int) []trace.Point {
	if pair == nil || steps <= 0 {
		return nil
	}
	if integ == nil {
		integ = integrators.NewSemiImplicitEuler()
	}

	p := pair.Clone()
	points := make([]trace.Point, 0)
	prev := p.Vector()

	for i := 0; i < steps; i++ {
		integ.Step(p)
		curr := p.Vector()

		a, b := Wrap(prev[Theta1]), Wrap(curr[Theta1])
		if a < 0 && b >= 0 && b-a < math.Pi && curr[Omega1] > 0 {
			frac := -a / (b - a)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			points = append(points, trace.Point{
				X: Wrap(lerp(prev[Theta2], curr[Theta2], frac)),
				Y: lerp(prev[Omega2], curr[Omega2], frac),
			})
		}
		prev = curr
	}

	return points
}

// Wrap maps an angle to (-π, π].
func Wrap(theta float64) float64 {
	w := math.Mod(theta+math.Pi, 2*math.Pi)
	if w <= 0 {
		w += 2 * math.Pi
	}
	return w - math.Pi
}

func component(x []float64, idx int) float64 {
	if idx <= Theta2 {
		return Wrap(x[idx])
	}
	return x[idx]
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
