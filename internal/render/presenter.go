package render

import (
	"context"
	"fmt"

	"github.com/san-kum/bounce/internal/dynamo"
)

// Mode selects a Presenter variant.
type Mode string

const (
	ModeHost   Mode = "host"
	ModeDevice Mode = "device"
)

// ParseMode validates a configured presentation mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHost, ModeDevice:
		return Mode(s), nil
	}
	return "", &dynamo.InputError{Field: "present", Value: s, Reason: "must be host or device"}
}

// Source is what a presenter needs from a compute device.
type Source interface {
	ReadBodies(dst dynamo.State) error
	UpdateVertices(buf *SharedBuffer) error
}

// Presenter produces the geometry of the current body state.
type Presenter interface {
	Present(ctx context.Context) (*Geometry, error)
}

// HostPresenter copies body state back and tessellates on the host.
type HostPresenter struct {
	src    Source
	circle *dynamo.UnitCircle
	bodies dynamo.State
	geom   Geometry
}

func NewHostPresenter(src Source, n int, circle *dynamo.UnitCircle) *HostPresenter {
	return &HostPresenter{
		src:    src,
		circle: circle,
		bodies: make(dynamo.State, n),
	}
}

func (p *HostPresenter) Present(ctx context.Context) (*Geometry, error) {
	if err := p.src.ReadBodies(p.bodies); err != nil {
		return nil, fmt.Errorf("read back bodies: %w", err)
	}
	Tessellate(p.bodies, p.circle, &p.geom)
	return &p.geom, nil
}

// DevicePresenter lets the device write vertices into the shared buffer.
type DevicePresenter struct {
	src  Source
	buf  *SharedBuffer
	geom Geometry
}

// NewDevicePresenter needs the body colors once; they never change.
func NewDevicePresenter(src Source, buf *SharedBuffer, colors []dynamo.Color) *DevicePresenter {
	return &DevicePresenter{
		src: src,
		buf: buf,
		geom: Geometry{
			Points: buf.Points(),
			Colors: colors,
			Handle: buf.Handle(),
		},
	}
}

func (p *DevicePresenter) Present(ctx context.Context) (*Geometry, error) {
	if err := p.buf.Acquire(); err != nil {
		return nil, err
	}
	if err := p.src.UpdateVertices(p.buf); err != nil {
		_ = p.buf.Release()
		return nil, fmt.Errorf("update vertices: %w", err)
	}
	if err := p.buf.Release(); err != nil {
		return nil, err
	}
	if p.geom.Resident() {
		return &p.geom, nil
	}
	v, err := p.buf.Snapshot()
	if err != nil {
		return nil, err
	}
	p.geom.Vertices = v
	return &p.geom, nil
}
