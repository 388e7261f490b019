// Package pendulum holds the physics of a planar double pendulum.
//
// Two massless rods connect a fixed pivot to two point masses. The inner
// pendulum hangs from the pivot, the outer one from the inner bob. Angles are
// measured from the downward vertical and are never wrapped.
//
//   - [State]: angle, angular velocity, mass and length of one rod/bob unit
//   - [Pair]: the two states plus the fixed time step and gravity
//   - [Accelerations]: closed-form Lagrangian equations of motion
//   - [Advance]: one semi-implicit Euler step, mutating both states in place
//
// # Example
//
//	pair, err := pendulum.NewPair(
//		pendulum.Params{Angle: math.Pi / 2, Mass: 10, Length: 100},
//		pendulum.Params{Angle: math.Pi / 2, Mass: 10, Length: 100},
//		0.05,
//	)
//	if err != nil {
//		return err
//	}
//	pair.Advance()
//
// # Singular configurations
//
// The acceleration denominator l·(2m1 + m2 - m2·cos 2Δ) vanishes only for
// m1 = 0, which construction rejects, but it can become tiny for a very light
// inner bob. Nothing inside [Advance] guards against this: NaN or Inf
// propagate into the state and callers detect them with [Pair.Finite].
//
// # Thread Safety
//
// States are mutated in place and are NOT safe for concurrent use. A single
// driver steps the pair and renders it afterwards.
package pendulum
