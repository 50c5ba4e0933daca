package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/render"
	"github.com/san-kum/bounce/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBalls  = 10
	DefaultFPS    = 30.0
	DefaultWidth  = 800
	DefaultHeight = 800
	DefaultFrames = 300
	DefaultDt     = 1.0 / 30
	DefaultTheme  = "default"
)

type Config struct {
	Balls   int    `yaml:"balls"`
	Seed    uint64 `yaml:"seed"`
	Classes []int  `yaml:"classes,omitempty"`

	FPS     float64 `yaml:"fps"`
	Points  int     `yaml:"points"`
	Present string  `yaml:"present"`
	Resolve string  `yaml:"resolve"`

	Kernel    string `yaml:"kernel"`
	Platform  int    `yaml:"platform"`
	Device    int    `yaml:"device"`
	Workgroup int    `yaml:"workgroup"`
	Workers   int    `yaml:"workers"`

	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Theme  string `yaml:"theme"`

	// Frames and Dt drive headless runs.
	Frames int     `yaml:"frames"`
	Dt     float64 `yaml:"dt"`
}

func DefaultConfig() *Config {
	return &Config{
		Balls:     DefaultBalls,
		Seed:      1,
		FPS:       DefaultFPS,
		Points:    dynamo.DefaultCirclePoints,
		Present:   string(render.ModeHost),
		Resolve:   string(compute.ResolveOrdered),
		Kernel:    compute.DefaultKernelPath,
		Workgroup: compute.DefaultWorkgroup,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Theme:     DefaultTheme,
		Frames:    DefaultFrames,
		Dt:        DefaultDt,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over base. Keys missing from the file keep the
// value from base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	cfg.Classes = append([]int(nil), base.Classes...)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(field string, value any, reason string) error {
	return &dynamo.InputError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}

// Validate rejects values the simulation cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Balls <= 0:
		return invalid("balls", c.Balls, "must be a positive integer")
	case c.FPS <= 0:
		return invalid("fps", c.FPS, "must be positive")
	case c.Points < 3:
		return invalid("points", c.Points, "must be at least 3")
	case c.Workgroup <= 0:
		return invalid("workgroup", c.Workgroup, "must be positive")
	case c.Workers < 0:
		return invalid("workers", c.Workers, "must not be negative")
	case c.Platform < 0:
		return invalid("platform", c.Platform, "must not be negative")
	case c.Device < 0:
		return invalid("device", c.Device, "must not be negative")
	case c.Width <= 0 || c.Height <= 0:
		return invalid("window", strconv.Itoa(c.Width)+"x"+strconv.Itoa(c.Height), "must be positive")
	case c.Frames < 0:
		return invalid("frames", c.Frames, "must not be negative")
	case c.Dt <= 0:
		return invalid("dt", c.Dt, "must be positive")
	}
	for _, k := range c.Classes {
		if k < 1 || k > dynamo.RadiusClasses {
			return invalid("classes", k, fmt.Sprintf("must be between 1 and %d", dynamo.RadiusClasses))
		}
	}
	if _, err := render.ParseMode(c.Present); err != nil {
		return err
	}
	if _, err := compute.ParseResolve(c.Resolve); err != nil {
		return err
	}
	return nil
}

// Selected reports whether both the platform and the device were configured,
// so the interactive prompt can be skipped.
func (c *Config) Selected() bool {
	return c.Platform > 0 && c.Device > 0
}

// Sim converts the configuration into simulation settings. kernel may be nil.
func (c *Config) Sim(kernel *compute.KernelSource, logger *log.Logger) sim.Config {
	return sim.Config{
		Balls:     c.Balls,
		Seed:      c.Seed,
		Classes:   c.Classes,
		FPS:       c.FPS,
		Points:    c.Points,
		Present:   render.Mode(c.Present),
		Resolve:   compute.ResolveMode(c.Resolve),
		Workgroup: c.Workgroup,
		Workers:   c.Workers,
		Kernel:    kernel,
		Logger:    logger,
	}
}
