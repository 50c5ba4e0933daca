package render

import "github.com/san-kum/bounce/internal/dynamo"

// Geometry is one frame of drawable circles. Vertices holds Points (x, y)
// pairs per body, body-major. Handle is non-zero when the vertices live in a
// device buffer instead of Vertices.
type Geometry struct {
	Points   int
	Vertices []float32
	Colors   []dynamo.Color
	Handle   uint32
}

// Bodies returns how many circles the geometry holds.
func (g *Geometry) Bodies() int { return len(g.Colors) }

// Resident reports whether the vertices are only available on the device.
func (g *Geometry) Resident() bool { return g.Handle != 0 }

// Circle returns the vertices of body i.
func (g *Geometry) Circle(i int) []float32 {
	stride := g.Points * 2
	return g.Vertices[i*stride : (i+1)*stride]
}

// VertexFloats returns the float count needed for n bodies.
func VertexFloats(n, points int) int { return n * points * 2 }

// TessellateBody writes the circle of b into dst, which must hold
// circle.Points()*2 floats.
func TessellateBody(dst []float32, b dynamo.Body, circle *dynamo.UnitCircle) {
	for k := 0; k < circle.Points(); k++ {
		cos, sin := circle.At(k)
		dst[2*k] = float32(b.Center.X + b.Radius*cos)
		dst[2*k+1] = float32(b.Center.Y + b.Radius*sin)
	}
}

// Tessellate fills g from bodies, reusing g's storage when it is large enough.
func Tessellate(bodies dynamo.State, circle *dynamo.UnitCircle, g *Geometry) {
	n, points := len(bodies), circle.Points()
	g.Points = points
	g.Handle = 0
	g.Vertices = grow(g.Vertices, VertexFloats(n, points))
	g.Colors = Colors(bodies, g.Colors)
	for i, b := range bodies {
		TessellateBody(g.Circle(i), b, circle)
	}
}

// Colors copies the fixed body colors into dst.
func Colors(bodies dynamo.State, dst []dynamo.Color) []dynamo.Color {
	if cap(dst) < len(bodies) {
		dst = make([]dynamo.Color, len(bodies))
	}
	dst = dst[:len(bodies)]
	for i, b := range bodies {
		dst[i] = b.Color
	}
	return dst
}

func grow(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
