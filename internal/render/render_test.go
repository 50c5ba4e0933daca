package render

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bounce/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

type fakeSource struct {
	bodies dynamo.State
	circle *dynamo.UnitCircle
	reads  int
}

func (f *fakeSource) ReadBodies(dst dynamo.State) error {
	f.reads++
	copy(dst, f.bodies)
	return nil
}

func (f *fakeSource) UpdateVertices(buf *SharedBuffer) error {
	v, err := buf.Vertices()
	if err != nil {
		return err
	}
	stride := f.circle.Points() * 2
	for i, b := range f.bodies {
		TessellateBody(v[i*stride:(i+1)*stride], b, f.circle)
	}
	return nil
}

func testBodies() dynamo.State {
	return dynamo.State{
		dynamo.MustBody(0.05, r2.Vec{X: 0.5, Y: -0.25}, r2.Vec{X: 1}),
		dynamo.MustBody(0.15, r2.Vec{X: -0.3, Y: 0.6}, r2.Vec{Y: -1}),
	}
}

func TestTessellate(t *testing.T) {
	bodies := testBodies()
	circle := dynamo.NewUnitCircle(360)

	var g Geometry
	Tessellate(bodies, circle, &g)

	if g.Bodies() != 2 {
		t.Fatalf("expected 2 bodies, got %d", g.Bodies())
	}
	if len(g.Vertices) != 2*360*2 {
		t.Fatalf("expected %d floats, got %d", 2*360*2, len(g.Vertices))
	}
	for i, b := range bodies {
		c := g.Circle(i)
		for k := 0; k < 360; k++ {
			dx := float64(c[2*k]) - b.Center.X
			dy := float64(c[2*k+1]) - b.Center.Y
			if math.Abs(math.Hypot(dx, dy)-b.Radius) > 1e-6 {
				t.Fatalf("body %d vertex %d not on its circle", i, k)
			}
		}
		if g.Colors[i] != b.Color {
			t.Errorf("body %d: expected color %v, got %v", i, b.Color, g.Colors[i])
		}
	}

	first := g.Circle(0)
	if math.Abs(float64(first[0])-0.55) > 1e-6 || math.Abs(float64(first[1])+0.25) > 1e-6 {
		t.Errorf("expected first vertex at angle 0, got (%f,%f)", first[0], first[1])
	}
}

func TestSharedBuffer_Handshake(t *testing.T) {
	buf := NewSharedBuffer(1, 8)

	if _, err := buf.Vertices(); !errors.Is(err, ErrBufferNotAcquired) {
		t.Errorf("expected ErrBufferNotAcquired, got %v", err)
	}
	if err := buf.Release(); !errors.Is(err, ErrBufferNotAcquired) {
		t.Errorf("expected ErrBufferNotAcquired on release, got %v", err)
	}
	if err := buf.Acquire(); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if err := buf.Acquire(); !errors.Is(err, ErrBufferBusy) {
		t.Errorf("expected ErrBufferBusy, got %v", err)
	}
	if _, err := buf.Snapshot(); !errors.Is(err, ErrBufferBusy) {
		t.Errorf("expected snapshot to fail while acquired, got %v", err)
	}
	v, err := buf.Vertices()
	if err != nil || len(v) != 16 {
		t.Fatalf("expected 16 writable floats, got %d (%v)", len(v), err)
	}
	if err := buf.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, err := buf.Snapshot(); err != nil {
		t.Errorf("snapshot after release failed: %v", err)
	}
}

func TestPresenters_Identical(t *testing.T) {
	bodies := testBodies()
	circle := dynamo.NewUnitCircle(64)
	src := &fakeSource{bodies: bodies, circle: circle}

	host, err := NewHostPresenter(src, len(bodies), circle).Present(context.Background())
	if err != nil {
		t.Fatalf("host present failed: %v", err)
	}
	if src.reads != 1 {
		t.Errorf("expected one read-back, got %d", src.reads)
	}

	buf := NewSharedBuffer(len(bodies), circle.Points())
	dev, err := NewDevicePresenter(src, buf, Colors(bodies, nil)).Present(context.Background())
	if err != nil {
		t.Fatalf("device present failed: %v", err)
	}
	if src.reads != 1 {
		t.Error("device presenter should not read bodies back")
	}

	if len(host.Vertices) != len(dev.Vertices) {
		t.Fatalf("vertex counts differ: %d vs %d", len(host.Vertices), len(dev.Vertices))
	}
	for i := range host.Vertices {
		if host.Vertices[i] != dev.Vertices[i] {
			t.Fatalf("vertex float %d differs: %f vs %f", i, host.Vertices[i], dev.Vertices[i])
		}
	}
	for i := range host.Colors {
		if host.Colors[i] != dev.Colors[i] {
			t.Errorf("color %d differs", i)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"host", "device"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("%s: unexpected error %v", s, err)
		}
	}
	if _, err := ParseMode("gpu"); !errors.Is(err, dynamo.ErrInput) {
		t.Errorf("expected ErrInput, got %v", err)
	}
}
