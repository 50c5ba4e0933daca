package render

import (
	"errors"
	"sync"
)

var (
	ErrBufferBusy        = errors.New("render: shared buffer already acquired")
	ErrBufferNotAcquired = errors.New("render: shared buffer not acquired")
)

// SharedBuffer is the vertex buffer the compute device writes and the
// rasterizer reads. The device may only touch it between Acquire and Release.
//
// Host-backed buffers keep the vertices in memory. Device-backed buffers only
// carry the handle of the device buffer object.
type SharedBuffer struct {
	mu       sync.Mutex
	acquired bool
	points   int
	vertices []float32
	handle   uint32
}

// NewSharedBuffer allocates host storage for n circles.
func NewSharedBuffer(n, points int) *SharedBuffer {
	return &SharedBuffer{
		points:   points,
		vertices: make([]float32, VertexFloats(n, points)),
	}
}

// NewDeviceBuffer wraps an existing device buffer object.
func NewDeviceBuffer(handle uint32, points int) *SharedBuffer {
	return &SharedBuffer{points: points, handle: handle}
}

func (s *SharedBuffer) Points() int    { return s.points }
func (s *SharedBuffer) Handle() uint32 { return s.handle }

// Acquire hands the buffer to the device.
func (s *SharedBuffer) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return ErrBufferBusy
	}
	s.acquired = true
	return nil
}

// Release hands the buffer back to the rasterizer.
func (s *SharedBuffer) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acquired {
		return ErrBufferNotAcquired
	}
	s.acquired = false
	return nil
}

// Vertices returns the host storage for writing. It fails unless the buffer is
// acquired.
func (s *SharedBuffer) Vertices() ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acquired {
		return nil, ErrBufferNotAcquired
	}
	return s.vertices, nil
}

// Snapshot returns the released buffer contents for drawing.
func (s *SharedBuffer) Snapshot() ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return nil, ErrBufferBusy
	}
	return s.vertices, nil
}
