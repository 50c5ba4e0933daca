package config

import (
	"maps"
	"slices"
)

// Presets hold only the fields they change; everything else comes from the
// defaults.
var Presets = map[string]*Config{
	"sparse": {
		Balls: 4,
	},
	"default": {
		Balls: DefaultBalls,
	},
	"crowded": {
		Balls: 200, Points: 48, Classes: []int{1},
	},
	"giants": {
		Balls: 12, Classes: []int{3},
	},
	"smooth": {
		Balls: 25, FPS: 60, Resolve: "accumulate",
	},
}

var presetInfo = map[string]string{
	"sparse":  "four balls, easy to follow one collision at a time",
	"default": "ten balls of mixed sizes",
	"crowded": "two hundred small balls with coarse circles",
	"giants":  "a dozen of the largest balls",
	"smooth":  "60 Hz stepping with accumulated collision response",
}

func GetPreset(name string) *Config {
	return Presets[name]
}

// Describe returns the one-line description of a preset.
func Describe(name string) string { return presetInfo[name] }

// ListPresets returns the preset names in alphabetical order.
func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}

// Apply copies every field set in p onto c.
func (c *Config) Apply(p *Config) {
	if p == nil {
		return
	}
	if p.Balls != 0 {
		c.Balls = p.Balls
	}
	if p.Seed != 0 {
		c.Seed = p.Seed
	}
	if len(p.Classes) > 0 {
		c.Classes = append([]int(nil), p.Classes...)
	}
	if p.FPS != 0 {
		c.FPS = p.FPS
	}
	if p.Points != 0 {
		c.Points = p.Points
	}
	if p.Present != "" {
		c.Present = p.Present
	}
	if p.Resolve != "" {
		c.Resolve = p.Resolve
	}
	if p.Kernel != "" {
		c.Kernel = p.Kernel
	}
	if p.Platform != 0 {
		c.Platform = p.Platform
	}
	if p.Device != 0 {
		c.Device = p.Device
	}
	if p.Workgroup != 0 {
		c.Workgroup = p.Workgroup
	}
	if p.Workers != 0 {
		c.Workers = p.Workers
	}
	if p.Width != 0 {
		c.Width = p.Width
	}
	if p.Height != 0 {
		c.Height = p.Height
	}
	if p.Theme != "" {
		c.Theme = p.Theme
	}
	if p.Frames != 0 {
		c.Frames = p.Frames
	}
	if p.Dt != 0 {
		c.Dt = p.Dt
	}
}
