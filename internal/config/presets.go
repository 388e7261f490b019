package config

import (
	"math"
	"sort"
)

var presets = map[string]func(c *Config){
	"reference": func(c *Config) {},
	"symmetric": func(c *Config) {
		c.Inner.Angle, c.Outer.Angle = Float(math.Pi/2), Float(math.Pi/2)
	},
	"gentle": func(c *Config) {
		c.Inner.Angle, c.Outer.Angle = Float(0.3), Float(0.3)
		c.Dt = 0.02
	},
	"chaos": func(c *Config) {
		c.Inner.Angle, c.Outer.Angle = Float(3.0), Float(3.0)
		c.Steps = 6000
	},
	"inverted": func(c *Config) {
		c.Inner.Angle, c.Outer.Angle = Float(math.Pi), Float(math.Pi+0.01)
		c.Integrator = "rk4"
		c.Dt = 0.01
		c.Steps = 10000
	},
	"heavy-tip": func(c *Config) {
		c.Inner.Angle, c.Outer.Angle = Float(1.0), Float(2.0)
		c.Inner.Mass, c.Outer.Mass = 5, 20
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
