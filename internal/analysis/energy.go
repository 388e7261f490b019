package analysis

import (
	"math"

	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/pendulum"
)

// EnergySeries returns the total energy of the initial state followed by
// the energy after each of the steps. The input pair is not modified.
func EnergySeries(pair *pendulum.Pair, integ integrators.Integrator, steps int) []float64 {
	if pair == nil || steps < 0 {
		return nil
	}
	if integ == nil {
		integ = integrators.NewSemiImplicitEuler()
	}

	p := pair.Clone()
	series := make([]float64, 0, steps+1)
	series = append(series, p.Energy())
	for i := 0; i < steps; i++ {
		integ.Step(p)
		series = append(series, p.Energy())
	}
	return series
}

// MaxRelativeDrift is the largest |E - E0| / |E0| over the series.
// A zero reference energy falls back to the absolute deviation.
func MaxRelativeDrift(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	e0 := series[0]
	maxDrift := 0.0
	for _, e := range series[1:] {
		d := math.Abs(e - e0)
		if e0 != 0 {
			d /= math.Abs(e0)
		}
		if d > maxDrift || math.IsNaN(d) {
			maxDrift = d
		}
	}
	return maxDrift
}
