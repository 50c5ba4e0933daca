package compute

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/render"
)

// CPUBackend runs the kernels on a goroutine worker pool. Its body array is
// the device mirror: the host copy only changes through ReadBodies.
type CPUBackend struct {
	workers   int
	workgroup int
	resolve   ResolveMode
	circle    *dynamo.UnitCircle

	bodies dynamo.State
	pairs  dynamo.PairIndex
	locks  []sync.Mutex
	dvx    []atomic.Uint64
	dvy    []atomic.Uint64
	buf    *render.SharedBuffer

	uploaded bool
	closed   bool
}

func NewCPUBackend(opts Options) *CPUBackend {
	opts = opts.withDefaults()
	return &CPUBackend{
		workers:   opts.Workers,
		workgroup: opts.Workgroup,
		resolve:   opts.Resolve,
		circle:    dynamo.NewUnitCircle(opts.Points),
	}
}

func (c *CPUBackend) Name() string { return "cpu" }

func (c *CPUBackend) Upload(bodies dynamo.State, pairs dynamo.PairIndex) error {
	if c.closed {
		return &dynamo.ResourceError{Resource: "device bodies", Op: "upload", Err: errClosed}
	}
	n := len(bodies)
	for _, p := range pairs {
		if int(p.J) >= n || p.I >= p.J {
			return &dynamo.ResourceError{
				Resource: "device pairs",
				Op:       "upload",
				Err:      fmt.Errorf("pair (%d,%d) invalid for %d bodies", p.I, p.J, n),
			}
		}
	}

	c.bodies = bodies.Clone()
	c.pairs = append(dynamo.PairIndex(nil), pairs...)
	c.locks = make([]sync.Mutex, n)
	c.dvx = make([]atomic.Uint64, n)
	c.dvy = make([]atomic.Uint64, n)
	c.buf = render.NewSharedBuffer(n, c.circle.Points())
	c.uploaded = true
	return nil
}

// Build checks that src holds every kernel; the kernels themselves are the
// Go implementations in package physics.
func (c *CPUBackend) Build(src *KernelSource) error {
	if src == nil {
		return nil
	}
	return src.Validate()
}

func (c *CPUBackend) ready(resource, op string) error {
	if c.closed {
		return &dynamo.ResourceError{Resource: resource, Op: op, Err: errClosed}
	}
	if !c.uploaded {
		return &dynamo.ResourceError{Resource: resource, Op: op, Err: fmt.Errorf("nothing uploaded")}
	}
	return nil
}

func (c *CPUBackend) WallPass(dt float64) error {
	if err := c.ready("device bodies", KernelWallBounce); err != nil {
		return err
	}
	dynamo.ParallelFor(len(c.bodies), c.workgroup, c.workers, func(start, end int) {
		physics.WallPass(c.bodies, dt, start, end)
	})
	return nil
}

func (c *CPUBackend) PairPass() (int, error) {
	if err := c.ready("device pairs", KernelBallBounce); err != nil {
		return 0, err
	}
	if c.resolve == ResolveAccumulate {
		return c.pairPassAccumulate(), nil
	}
	return c.pairPassOrdered(), nil
}

// pairPassOrdered locks both bodies of a pair, lower index first, around its
// response. Pairs sharing a body are applied one after another in whatever
// order the workers reach them, so every outcome equals some serial order of
// the pairs and no update is lost. The GL kernel gives no such guarantee: two
// invocations may both read a shared body and the later write discards the
// other's response.
func (c *CPUBackend) pairPassOrdered() int {
	var hits atomic.Int64
	dynamo.ParallelFor(len(c.pairs), c.workgroup, c.workers, func(start, end int) {
		local := 0
		for _, p := range c.pairs[start:end] {
			c.locks[p.I].Lock()
			c.locks[p.J].Lock()
			if physics.Collide(&c.bodies[p.I], &c.bodies[p.J]) {
				local++
			}
			c.locks[p.J].Unlock()
			c.locks[p.I].Unlock()
		}
		hits.Add(int64(local))
	})
	return int(hits.Load())
}

// pairPassAccumulate evaluates every pair against the same velocities and
// applies the summed deltas once per body.
func (c *CPUBackend) pairPassAccumulate() int {
	for i := range c.dvx {
		c.dvx[i].Store(0)
		c.dvy[i].Store(0)
	}

	var hits atomic.Int64
	dynamo.ParallelFor(len(c.pairs), c.workgroup, c.workers, func(start, end int) {
		local := 0
		for _, p := range c.pairs[start:end] {
			dva, dvb, ok := physics.Impulse(c.bodies[p.I], c.bodies[p.J])
			if !ok {
				continue
			}
			addFloat(&c.dvx[p.I], dva.X)
			addFloat(&c.dvy[p.I], dva.Y)
			addFloat(&c.dvx[p.J], dvb.X)
			addFloat(&c.dvy[p.J], dvb.Y)
			local++
		}
		hits.Add(int64(local))
	})

	if hits.Load() == 0 {
		return 0
	}
	dynamo.ParallelFor(len(c.bodies), c.workgroup, c.workers, func(start, end int) {
		for i := start; i < end; i++ {
			c.bodies[i].Velocity.X += math.Float64frombits(c.dvx[i].Load())
			c.bodies[i].Velocity.Y += math.Float64frombits(c.dvy[i].Load())
		}
	})
	return int(hits.Load())
}

func addFloat(a *atomic.Uint64, d float64) {
	for {
		old := a.Load()
		if a.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+d)) {
			return
		}
	}
}

func (c *CPUBackend) ReadBodies(dst dynamo.State) error {
	if err := c.ready("device bodies", "read"); err != nil {
		return err
	}
	if len(dst) != len(c.bodies) {
		return &dynamo.ResourceError{
			Resource: "device bodies",
			Op:       "read",
			Err:      fmt.Errorf("destination holds %d bodies, device holds %d", len(dst), len(c.bodies)),
		}
	}
	copy(dst, c.bodies)
	return nil
}

// UpdateVertices tessellates every body straight into buf, which the caller
// must have acquired.
func (c *CPUBackend) UpdateVertices(buf *render.SharedBuffer) error {
	if err := c.ready("vertex buffer", KernelUpdateVBO); err != nil {
		return err
	}
	v, err := buf.Vertices()
	if err != nil {
		return err
	}
	stride := c.circle.Points() * 2
	if buf.Points() != c.circle.Points() || len(v) != len(c.bodies)*stride {
		return &dynamo.ResourceError{
			Resource: "vertex buffer",
			Op:       KernelUpdateVBO,
			Err:      fmt.Errorf("buffer holds %d floats, need %d", len(v), len(c.bodies)*stride),
		}
	}
	dynamo.ParallelFor(len(c.bodies), c.workgroup, c.workers, func(start, end int) {
		for i := start; i < end; i++ {
			render.TessellateBody(v[i*stride:(i+1)*stride], c.bodies[i], c.circle)
		}
	})
	return nil
}

func (c *CPUBackend) SharedBuffer() (*render.SharedBuffer, error) {
	if err := c.ready("vertex buffer", "share"); err != nil {
		return nil, err
	}
	return c.buf, nil
}

// Close releases the device mirror. It is safe to call more than once.
func (c *CPUBackend) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.bodies, c.pairs, c.locks, c.dvx, c.dvy, c.buf = nil, nil, nil, nil, nil, nil
	return nil
}
