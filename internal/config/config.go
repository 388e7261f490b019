package config

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/pendulum"
)

const (
	DefaultDt            = pendulum.DefaultDt
	DefaultGravity       = pendulum.DefaultGravity
	DefaultMass          = pendulum.DefaultMass
	DefaultLength        = pendulum.DefaultLength
	DefaultStrokeWidth   = 3
	DefaultSteps         = 2000
	DefaultTraceCapacity = 600
	DefaultFPS           = 30
	DefaultWidth         = 80
	DefaultHeight        = 36
	DefaultPivotX        = 0.5
	DefaultPivotY        = 0.25
	DefaultTimeScale     = 1.0
	DefaultColor         = "#ffc0cb"
	DefaultTraceColor    = "#808080"
	DefaultTheme         = "classic"
	DefaultLogLevel      = "info"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Integrator string         `yaml:"integrator"`
	Dt         float64        `yaml:"dt"`
	Gravity    float64        `yaml:"gravity"`
	Steps      int            `yaml:"steps"`
	Seed       int64          `yaml:"seed"`
	Inner      PendulumConfig `yaml:"inner"`
	Outer      PendulumConfig `yaml:"outer"`
	Trace      TraceConfig    `yaml:"trace"`
	Display    DisplayConfig  `yaml:"display"`
	Log        LogConfig      `yaml:"log"`
}

// PendulumConfig mixes physics parameters with the rendering style of one
// arm. A nil Angle is drawn uniformly from [0, 2π).
type PendulumConfig struct {
	Angle           *float64 `yaml:"angle,omitempty"`
	AngularVelocity float64  `yaml:"angular_velocity"`
	Mass            float64  `yaml:"mass"`
	Length          float64  `yaml:"length"`
	StrokeWidth     int      `yaml:"stroke_width"`
	Radius          float64  `yaml:"radius,omitempty"`
	Color           string   `yaml:"color"`
}

type TraceConfig struct {
	Capacity int    `yaml:"capacity"`
	Color    string `yaml:"color"`
}

// DisplayConfig sizes the live view. Pivot coordinates are fractions of the
// canvas; Scale is sub-pixels per length unit, 0 fits both arms on screen.
type DisplayConfig struct {
	FPS       int     `yaml:"fps"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Scale     float64 `yaml:"scale"`
	PivotX    float64 `yaml:"pivot_x"`
	PivotY    float64 `yaml:"pivot_y"`
	Theme     string  `yaml:"theme"`
	Realtime  bool    `yaml:"realtime"`
	TimeScale float64 `yaml:"time_scale"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func defaultPendulum() PendulumConfig {
	return PendulumConfig{
		Mass:        DefaultMass,
		Length:      DefaultLength,
		StrokeWidth: DefaultStrokeWidth,
		Color:       DefaultColor,
	}
}

// DefaultConfig reproduces the classic setup: random angles, at rest, mass
// 10, length 100, dt 0.05.
func DefaultConfig() *Config {
	return &Config{
		Integrator: integrators.Default,
		Dt:         DefaultDt,
		Gravity:    DefaultGravity,
		Steps:      DefaultSteps,
		Inner:      defaultPendulum(),
		Outer:      defaultPendulum(),
		Trace: TraceConfig{
			Capacity: DefaultTraceCapacity,
			Color:    DefaultTraceColor,
		},
		Display: DisplayConfig{
			FPS:       DefaultFPS,
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			PivotX:    DefaultPivotX,
			PivotY:    DefaultPivotY,
			Theme:     DefaultTheme,
			TimeScale: DefaultTimeScale,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto decodes the file over cfg, so keys the file leaves out keep
// their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.Gravity < 0 || math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		return fmt.Errorf("%w: gravity must be finite and non-negative, got %g", ErrInvalidConfig, c.Gravity)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	}
	if _, err := integrators.Get(c.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name, p := range map[string]PendulumConfig{"inner": c.Inner, "outer": c.Outer} {
		if p.Mass <= 0 {
			return fmt.Errorf("%w: %s mass must be positive, got %g", ErrInvalidConfig, name, p.Mass)
		}
		if p.Length <= 0 {
			return fmt.Errorf("%w: %s length must be positive, got %g", ErrInvalidConfig, name, p.Length)
		}
		if p.StrokeWidth <= 0 {
			return fmt.Errorf("%w: %s stroke width must be positive, got %d", ErrInvalidConfig, name, p.StrokeWidth)
		}
	}
	if c.Trace.Capacity <= 0 {
		return fmt.Errorf("%w: trace capacity must be positive, got %d", ErrInvalidConfig, c.Trace.Capacity)
	}
	if c.Display.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.Display.FPS)
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("%w: display must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Display.Width, c.Display.Height)
	}
	if !unit(c.Display.PivotX) || !unit(c.Display.PivotY) {
		return fmt.Errorf("%w: pivot must lie within [0, 1], got (%g, %g)", ErrInvalidConfig, c.Display.PivotX, c.Display.PivotY)
	}
	if c.Display.Scale < 0 || math.IsNaN(c.Display.Scale) || math.IsInf(c.Display.Scale, 0) {
		return fmt.Errorf("%w: scale must be finite and non-negative, got %g", ErrInvalidConfig, c.Display.Scale)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// Params resolves the physics parameters, drawing missing angles from rng.
func (c *Config) Params(rng *rand.Rand) (inner, outer pendulum.Params) {
	return c.Inner.params(rng), c.Outer.params(rng)
}

func (p PendulumConfig) params(rng *rand.Rand) pendulum.Params {
	var angle float64
	if p.Angle != nil {
		angle = *p.Angle
	} else {
		angle = rng.Float64() * 2 * math.Pi
	}
	return pendulum.Params{
		Angle:           angle,
		AngularVelocity: p.AngularVelocity,
		Mass:            p.Mass,
		Length:          p.Length,
	}
}

// NewPair builds the initial pendulum pair for this config.
func (c *Config) NewPair(rng *rand.Rand) (*pendulum.Pair, error) {
	inner, outer := c.Params(rng)
	return pendulum.NewPair(inner, outer, c.Dt, pendulum.WithGravity(c.Gravity))
}

// Float returns a pointer to v, for setting fixed angles.
func Float(v float64) *float64 {
	return &v
}
