package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/bounce/internal/dynamo"
)

// Viewport maps the arena [-1,1]² onto a window of Width x Height pixels,
// y up.
type Viewport struct {
	Width, Height float32
}

func (v Viewport) ToScreen(x, y float32) rl.Vector2 {
	return rl.NewVector2((x+1)/2*v.Width, (1-y)/2*v.Height)
}

// Fan converts the vertices of one circle into a triangle fan in screen space,
// reusing dst. The circle is counter-clockwise with y up, so the order is
// reversed to stay counter-clockwise once y points down.
func (v Viewport) Fan(dst []rl.Vector2, circle []float32) []rl.Vector2 {
	n := len(circle) / 2
	dst = dst[:0]
	for k := n - 1; k >= 0; k-- {
		dst = append(dst, v.ToScreen(circle[2*k], circle[2*k+1]))
	}
	return dst
}

func ToColor(c dynamo.Color) rl.Color {
	return rl.NewColor(channel(c.R), channel(c.G), channel(c.B), channel(c.A))
}

func channel(f float32) uint8 {
	return uint8(min(max(f, 0), 1)*255 + 0.5)
}
