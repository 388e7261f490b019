package analysis

import (
	"math"

	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/pendulum"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run the pair and a copy with θ1 shifted by perturbation
// 2. After every step measure their phase-space separation d
// 3. Accumulate ln(d/d0) and pull the copy back to distance d0
// 4. λ ≈ Σ ln(d/d0) / (n·dt)
//
// The input pair is not modified. Stepping stops early if either
// trajectory becomes non-finite.
func LyapunovExponent(pair *pendulum.Pair, integ integrators.Integrator, steps int, perturbation float64) float64 {
	return lyapunovForComponent(pair, integ, 0, steps, perturbation)
}

// LyapunovSpectrum computes one exponent per phase component [θ1, θ2, ω1, ω2]
// by perturbing each independently.
func LyapunovSpectrum(pair *pendulum.Pair, integ integrators.Integrator, steps int, perturbation float64) []float64 {
	spectrum := make([]float64, 4)
	for i := range spectrum {
		spectrum[i] = lyapunovForComponent(pair, integ, i, steps, perturbation)
	}
	return spectrum
}

func lyapunovForComponent(pair *pendulum.Pair, integ integrators.Integrator, idx, steps int, d0 float64) float64 {
	if pair == nil || steps <= 0 || d0 <= 0 {
		return 0
	}
	if integ == nil {
		integ = integrators.NewSemiImplicitEuler()
	}

	ref := pair.Clone()
	pert := pair.Clone()
	xp := pert.Vector()
	xp[idx] += d0
	pert.SetVector(xp)

	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		integ.Step(ref)
		integ.Step(pert)
		if !ref.Finite() || !pert.Finite() {
			break
		}

		x, xp := ref.Vector(), pert.Vector()
		sep := 0.0
		for j := range x {
			diff := xp[j] - x[j]
			sep += diff * diff
		}
		sep = math.Sqrt(sep)
		if sep == 0 {
			continue
		}

		sumLog += math.Log(sep / d0)
		count++

		// Renormalize to keep the separation in the linear regime
		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
		pert.SetVector(xp)
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * pair.Dt)
}
