package sim

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/render"
	"gonum.org/v1/gonum/spatial/r2"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Tick(d time.Duration) { c.now = c.now.Add(d) }

// After advances the fake time instead of waiting.
func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// countingBackend wraps the cpu device, counts releases and can fail one
// setup step.
type countingBackend struct {
	*compute.CPUBackend
	closes    int
	failBuild bool
	failShare bool
}

func (b *countingBackend) Build(src *compute.KernelSource) error {
	if b.failBuild {
		return &dynamo.BuildError{Kernel: compute.KernelBallBounce, Log: "0:12: error: syntax error"}
	}
	return b.CPUBackend.Build(src)
}

func (b *countingBackend) SharedBuffer() (*render.SharedBuffer, error) {
	if b.failShare {
		return nil, &dynamo.ResourceError{Resource: "vertex buffer", Op: "share", Err: errors.New("out of memory")}
	}
	return b.CPUBackend.SharedBuffer()
}

func (b *countingBackend) Close() error {
	b.closes++
	return b.CPUBackend.Close()
}

func countingDevice(b *countingBackend) compute.Device {
	return compute.NewDevice(compute.DeviceInfo{Name: "counting", Type: compute.DeviceCPU}, func(opts compute.Options) (compute.Backend, error) {
		b.CPUBackend = compute.NewCPUBackend(opts)
		return b, nil
	})
}

func cpuDevice() compute.Device {
	d, err := compute.NewRegistry().Lookup(1, 1)
	if err != nil {
		panic(err)
	}
	return d
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func headOn() dynamo.State {
	return dynamo.State{
		dynamo.MustBody(0.1, r2.Vec{X: -0.5}, r2.Vec{X: 1}),
		dynamo.MustBody(0.1, r2.Vec{X: 0.5}, r2.Vec{X: -1}),
	}
}
