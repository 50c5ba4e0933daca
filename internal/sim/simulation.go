package sim

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/render"
	"golang.org/x/exp/rand"
)

type Config struct {
	Balls  int
	Seed   uint64
	FPS    float64
	Points int

	Present   render.Mode
	Resolve   compute.ResolveMode
	Workgroup int
	Workers   int

	// Kernel is checked or compiled by the device. Nil keeps the device's
	// built-in kernels.
	Kernel *compute.KernelSource

	// Classes restricts the random spawn to these radius classes.
	Classes []int

	// Bodies replaces the random spawn when set.
	Bodies dynamo.State

	Clock  Clock
	Logger *log.Logger
}

func (c Config) interval() time.Duration {
	if c.FPS <= 0 {
		return DefaultInterval
	}
	return time.Duration(float64(time.Second) / c.FPS)
}

func (c Config) validate() error {
	if c.Bodies == nil && c.Balls <= 0 {
		return &dynamo.InputError{Field: "balls", Value: strconv.Itoa(c.Balls), Reason: "must be a positive integer"}
	}
	for i, b := range c.Bodies {
		if dynamo.RadiusClass(b.Radius) == 0 {
			return fmt.Errorf("body %d: %w: %w", i, dynamo.ErrInvalidRadius, &dynamo.InputError{
				Field:  "radius",
				Value:  strconv.FormatFloat(b.Radius, 'g', -1, 64),
				Reason: fmt.Sprintf("must be one of %v", dynamo.AllowedRadii()),
			})
		}
	}
	if c.Bodies != nil && !c.Bodies.IsValid() {
		return &dynamo.InputError{Field: "bodies", Value: strconv.Itoa(len(c.Bodies)), Reason: "contain a non-finite position or velocity"}
	}
	if c.Present != "" {
		if _, err := render.ParseMode(string(c.Present)); err != nil {
			return err
		}
	}
	if c.Resolve != "" {
		if _, err := compute.ParseResolve(string(c.Resolve)); err != nil {
			return err
		}
	}
	return nil
}

// Simulation owns everything one run needs: the device with its body and
// pair mirrors, the presenter and the frame driver. Close releases all of it.
type Simulation struct {
	cfg    Config
	log    *log.Logger
	bodies dynamo.State
	pairs  dynamo.PairIndex
	circle *dynamo.UnitCircle

	dev       compute.Backend
	presenter render.Presenter
	driver    *Driver
	closed    bool
}

// New spawns the bodies, opens the device, uploads them with their pair index,
// builds the kernels and sets up presentation. If any step fails, whatever was
// acquired before it is released.
func New(ctx context.Context, cfg Config, device compute.Device) (s *Simulation, err error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Present == "" {
		cfg.Present = render.ModeHost
	}
	if cfg.Resolve == "" {
		cfg.Resolve = compute.ResolveOrdered
	}

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	bodies := cfg.Bodies.Clone()
	if cfg.Bodies == nil {
		if bodies, err = dynamo.SpawnClasses(cfg.Balls, rand.New(rand.NewSource(cfg.Seed)), cfg.Classes); err != nil {
			return nil, err
		}
	}

	s = &Simulation{
		cfg:    cfg,
		log:    cfg.Logger,
		bodies: bodies,
		pairs:  dynamo.BuildPairs(len(bodies)),
		circle: dynamo.NewUnitCircle(cfg.Points),
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, s.Close())
			s = nil
		}
	}()

	if err := ctx.Err(); err != nil {
		return s, err
	}
	s.dev, err = device.Open(compute.Options{
		Workgroup: cfg.Workgroup,
		Workers:   cfg.Workers,
		Resolve:   cfg.Resolve,
		Points:    s.circle.Points(),
		Logger:    cfg.Logger,
	})
	if err != nil {
		return s, err
	}
	s.log.Info("device opened", "device", device.Name, "backend", s.dev.Name())

	if err = s.dev.Upload(s.bodies, s.pairs); err != nil {
		return s, fmt.Errorf("upload: %w", err)
	}
	s.log.Debug("state uploaded", "bodies", len(s.bodies), "pairs", len(s.pairs))

	if err = ctx.Err(); err != nil {
		return s, err
	}
	if err = s.dev.Build(cfg.Kernel); err != nil {
		return s, fmt.Errorf("build kernels: %w", err)
	}

	switch cfg.Present {
	case render.ModeDevice:
		buf, err := s.dev.SharedBuffer()
		if err != nil {
			return s, fmt.Errorf("share vertex buffer: %w", err)
		}
		s.presenter = render.NewDevicePresenter(s.dev, buf, render.Colors(s.bodies, nil))
	default:
		s.presenter = render.NewHostPresenter(s.dev, len(s.bodies), s.circle)
	}

	s.driver = NewDriver(s.dev, s.presenter, len(s.bodies), cfg.Clock, cfg.interval())
	s.log.Info("simulation ready",
		"balls", len(s.bodies),
		"seed", cfg.Seed,
		"present", cfg.Present,
		"resolve", cfg.Resolve,
		"interval", s.driver.Interval(),
	)
	return s, nil
}

func (s *Simulation) Driver() *Driver            { return s.driver }
func (s *Simulation) Device() compute.Backend    { return s.dev }
func (s *Simulation) Pairs() dynamo.PairIndex    { return s.pairs }
func (s *Simulation) Circle() *dynamo.UnitCircle { return s.circle }

// Initial returns the state the simulation started from.
func (s *Simulation) Initial() dynamo.State { return s.bodies }

func (s *Simulation) AddObserver(o Observer) { s.driver.AddObserver(o) }

// Bodies reads the current state back from the device.
func (s *Simulation) Bodies() (dynamo.State, error) {
	out := make(dynamo.State, len(s.bodies))
	if err := s.dev.ReadBodies(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Present produces the geometry of the current state without stepping.
func (s *Simulation) Present(ctx context.Context) (*render.Geometry, error) {
	return s.presenter.Present(ctx)
}

func (s *Simulation) Poll(ctx context.Context) (Frame, bool, error) { return s.driver.Poll(ctx) }

func (s *Simulation) Advance(ctx context.Context, dt float64) (Frame, error) {
	return s.driver.Advance(ctx, dt)
}

func (s *Simulation) Run(ctx context.Context, redraw func(Frame) error) error {
	return s.driver.Run(ctx, redraw)
}

// Close releases the device. Every exit path goes through it and it is safe
// to call more than once.
func (s *Simulation) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.dev == nil {
		return nil
	}
	err := s.dev.Close()
	s.log.Debug("device released", "backend", s.dev.Name(), "err", err)
	return err
}
