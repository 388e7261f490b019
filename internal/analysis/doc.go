// Package analysis provides chaos and dynamics analysis tools for the
// double pendulum.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [LyapunovSpectrum]: one exponent per perturbed phase component
//   - [EnergySeries]: energy per step, to judge integrator drift
//   - [PhasePortrait]: 2D phase space trajectories
//   - [PoincareSection]: (θ2, ω2) each time the inner arm passes downward
//   - [DominantFrequency]: strongest frequency of a sampled series
//
// None of these functions modify the pair they are given.
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(pair, integ, 10000, 1e-8)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
