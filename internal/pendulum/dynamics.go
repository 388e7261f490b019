package pendulum

import "math"

// Accelerations returns the angular accelerations of the inner and outer
// pendulum. Both are computed from the same, unmodified inputs.
func Accelerations(inner, outer State, g float64) (a1, a2 float64) {
	t1, t2 := inner.Angle, outer.Angle
	w1, w2 := inner.AngularVelocity, outer.AngularVelocity
	m1, m2, l1, l2 := inner.Mass, outer.Mass, inner.Length, outer.Length

	delta := t1 - t2
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	// l1 and l2 scale the same mass term.
	den := 2*m1 + m2 - m2*math.Cos(2*delta)

	num1 := -g*(2*m1+m2)*math.Sin(t1) -
		m2*g*math.Sin(t1-2*t2) -
		2*sinD*m2*(w2*w2*l2+w1*w1*l1*cosD)

	num2 := 2 * sinD * (w1*w1*l1*(m1+m2) +
		g*(m1+m2)*math.Cos(t1) +
		w2*w2*l2*m2*cosD)

	return num1 / (l1 * den), num2 / (l2 * den)
}

// Advance performs one semi-implicit Euler step in place: each velocity is
// kicked by its acceleration, then the angle moves with the new velocity.
// No component other than Angle and AngularVelocity is touched.
func Advance(inner, outer *State, dt, g float64) {
	a1, a2 := Accelerations(*inner, *outer, g)

	inner.AngularVelocity += a1 * dt
	inner.Angle += inner.AngularVelocity * dt
	outer.AngularVelocity += a2 * dt
	outer.Angle += outer.AngularVelocity * dt
}
