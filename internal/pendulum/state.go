package pendulum

import (
	"fmt"
	"math"
)

const (
	DefaultGravity = 9.81
	DefaultMass    = 10.0
	DefaultLength  = 100.0
	DefaultDt      = 0.05
)

// Params is the construction input for one pendulum.
type Params struct {
	Angle           float64
	AngularVelocity float64
	Mass            float64
	Length          float64
}

// State is one rod/bob unit. Only the stepper writes Angle and
// AngularVelocity; renderers read.
type State struct {
	Angle           float64
	AngularVelocity float64
	Mass            float64
	Length          float64
}

func NewState(p Params) (*State, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &State{
		Angle:           p.Angle,
		AngularVelocity: p.AngularVelocity,
		Mass:            p.Mass,
		Length:          p.Length,
	}, nil
}

func (p Params) validate() error {
	checks := []struct {
		field    string
		value    float64
		positive bool
	}{
		{"angle", p.Angle, false},
		{"angular_velocity", p.AngularVelocity, false},
		{"mass", p.Mass, true},
		{"length", p.Length, true},
	}
	for _, c := range checks {
		if !isFinite(c.value) || (c.positive && c.value <= 0) {
			return &ParameterError{Field: c.field, Value: c.value}
		}
	}
	return nil
}

// Params returns the current state as construction input.
func (s *State) Params() Params {
	return Params{
		Angle:           s.Angle,
		AngularVelocity: s.AngularVelocity,
		Mass:            s.Mass,
		Length:          s.Length,
	}
}

// Pair is the unit of evolution: both pendulums, the fixed step and gravity.
type Pair struct {
	Inner   *State
	Outer   *State
	Dt      float64
	Gravity float64
}

// Option configures a Pair at construction.
type Option func(*Pair)

func WithGravity(g float64) Option {
	return func(p *Pair) { p.Gravity = g }
}

// NewPair builds the pair state from the inner (pivot side) and outer
// pendulum parameters.
func NewPair(inner, outer Params, dt float64, opts ...Option) (*Pair, error) {
	if !isFinite(dt) || dt <= 0 {
		return nil, &ParameterError{Field: "dt", Value: dt}
	}
	in, err := NewState(inner)
	if err != nil {
		return nil, fmt.Errorf("inner pendulum: %w", err)
	}
	out, err := NewState(outer)
	if err != nil {
		return nil, fmt.Errorf("outer pendulum: %w", err)
	}

	p := &Pair{Inner: in, Outer: out, Dt: dt, Gravity: DefaultGravity}
	for _, opt := range opts {
		opt(p)
	}
	if !isFinite(p.Gravity) {
		return nil, &ParameterError{Field: "gravity", Value: p.Gravity}
	}
	return p, nil
}

// Advance steps the pair once with semi-implicit Euler and returns it.
func (p *Pair) Advance() *Pair {
	Advance(p.Inner, p.Outer, p.Dt, p.Gravity)
	return p
}

// Positions returns the bob coordinates relative to the pivot, y pointing
// down.
func (p *Pair) Positions() (x1, y1, x2, y2 float64) {
	x1 = p.Inner.Length * math.Sin(p.Inner.Angle)
	y1 = p.Inner.Length * math.Cos(p.Inner.Angle)
	x2 = x1 + p.Outer.Length*math.Sin(p.Outer.Angle)
	y2 = y1 + p.Outer.Length*math.Cos(p.Outer.Angle)
	return
}

// Energy is the total mechanical energy with the potential zero at the
// pivot.
func (p *Pair) Energy() float64 {
	t1, t2 := p.Inner.Angle, p.Outer.Angle
	w1, w2 := p.Inner.AngularVelocity, p.Outer.AngularVelocity
	m1, m2, l1, l2, g := p.Inner.Mass, p.Outer.Mass, p.Inner.Length, p.Outer.Length, p.Gravity

	v1sq := l1 * l1 * w1 * w1
	v2sq := l1*l1*w1*w1 + l2*l2*w2*w2 +
		2*l1*l2*w1*w2*math.Cos(t1-t2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(t1)
	y2 := y1 - l2*math.Cos(t2)
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}

// Finite reports whether every angle and angular velocity is a finite number.
func (p *Pair) Finite() bool {
	for _, v := range p.Vector() {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// Vector flattens the phase state to [θ1, θ2, ω1, ω2].
func (p *Pair) Vector() []float64 {
	return []float64{p.Inner.Angle, p.Outer.Angle, p.Inner.AngularVelocity, p.Outer.AngularVelocity}
}

// SetVector writes a [θ1, θ2, ω1, ω2] vector back into the pair.
func (p *Pair) SetVector(x []float64) {
	if len(x) < 4 {
		return
	}
	p.Inner.Angle, p.Outer.Angle = x[0], x[1]
	p.Inner.AngularVelocity, p.Outer.AngularVelocity = x[2], x[3]
}

// Clone returns a deep copy that can be stepped independently.
func (p *Pair) Clone() *Pair {
	in, out := *p.Inner, *p.Outer
	return &Pair{Inner: &in, Outer: &out, Dt: p.Dt, Gravity: p.Gravity}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
