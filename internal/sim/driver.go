package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/render"
)

// Driver gates the passes on wall-clock time. It never overlaps frames: wall
// pass, pair pass and presentation of one frame finish before the next frame
// can start.
type Driver struct {
	dev       compute.Backend
	presenter render.Presenter
	clock     Clock
	interval  time.Duration

	phase     Phase
	last      time.Time
	frames    int
	elapsed   float64
	bodies    dynamo.State
	observers []Observer
}

// NewDriver starts the clock at construction; the first step happens one
// interval later.
func NewDriver(dev compute.Backend, presenter render.Presenter, n int, clock Clock, interval time.Duration) *Driver {
	if clock == nil {
		clock = RealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{
		dev:       dev,
		presenter: presenter,
		clock:     clock,
		interval:  interval,
		last:      clock.Now(),
		bodies:    make(dynamo.State, n),
	}
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) Phase() Phase            { return d.phase }
func (d *Driver) Frames() int             { return d.frames }
func (d *Driver) Interval() time.Duration { return d.interval }

// Restart moves the reference time to now, so time spent paused is not
// folded into the next dt.
func (d *Driver) Restart() { d.last = d.clock.Now() }

// Poll steps once if at least one interval has passed since the last step,
// using the measured elapsed time as dt. Otherwise it returns immediately with
// stepped false.
func (d *Driver) Poll(ctx context.Context) (frame Frame, stepped bool, err error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, false, err
	}
	now := d.clock.Now()
	elapsed := now.Sub(d.last)
	if elapsed < d.interval {
		return Frame{}, false, nil
	}
	d.last = now
	frame, err = d.Advance(ctx, elapsed.Seconds())
	return frame, true, err
}

// Advance runs one step with an explicit dt, ignoring the clock.
func (d *Driver) Advance(ctx context.Context, dt float64) (Frame, error) {
	d.phase = Stepping
	defer func() { d.phase = Waiting }()

	if err := d.dev.WallPass(dt); err != nil {
		return Frame{}, fmt.Errorf("wall pass: %w", err)
	}
	hits, err := d.dev.PairPass()
	if err != nil {
		return Frame{}, fmt.Errorf("pair pass: %w", err)
	}
	geom, err := d.presenter.Present(ctx)
	if err != nil {
		return Frame{}, fmt.Errorf("present: %w", err)
	}

	d.frames++
	d.elapsed += dt
	frame := Frame{
		Index:      d.frames,
		Dt:         dt,
		Time:       d.elapsed,
		Collisions: hits,
		Geometry:   geom,
	}

	if len(d.observers) > 0 {
		if err := d.dev.ReadBodies(d.bodies); err != nil {
			return Frame{}, fmt.Errorf("read back bodies: %w", err)
		}
		frame.Bodies = d.bodies
		for _, o := range d.observers {
			o.OnFrame(frame)
		}
	}
	return frame, nil
}

// Run polls until ctx is done, calling redraw after every step. Between steps
// it sleeps until the next interval is due.
func (d *Driver) Run(ctx context.Context, redraw func(Frame) error) error {
	for {
		frame, stepped, err := d.Poll(ctx)
		if err != nil {
			return err
		}
		if stepped {
			if redraw != nil {
				if err := redraw(frame); err != nil {
					return err
				}
			}
			continue
		}

		wait := d.interval - d.clock.Now().Sub(d.last)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.clock.After(wait):
		}
	}
}
