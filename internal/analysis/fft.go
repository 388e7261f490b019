package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum removes the mean and returns the magnitude of each
// non-negative frequency bin, len(data)/2+1 values.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	centred := make([]float64, len(data))
	copy(centred, data)
	floats.AddConst(-floats.Sum(data)/float64(len(data)), centred)

	coeffs := fourier.NewFFT(len(centred)).Coefficients(nil, centred)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// bin of a series sampled every dt. The series is Hann windowed first so a
// frequency between bins does not leak into its neighbours.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 2 || dt <= 0 {
		return 0
	}
	windowed := make([]float64, len(data))
	copy(windowed, data)
	floats.AddConst(-floats.Sum(data)/float64(len(data)), windowed)
	window.Apply(windowed, window.Hann)

	ps := PowerSpectrum(windowed)
	if len(ps) < 2 {
		return 0
	}
	best := 1 + floats.MaxIdx(ps[1:])
	return float64(best) / (float64(len(data)) * dt)
}
