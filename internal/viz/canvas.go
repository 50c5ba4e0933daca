package viz

import (
	"strings"

	"github.com/san-kum/bounce/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// maxSegments caps how many edges of one circle are drawn; a terminal cell
// cannot show more detail than that.
const maxSegments = 48

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the sub-pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Project maps arena coordinates in [-1,1]² to sub-pixels, y up.
func (c *Canvas) Project(x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	return int((x + 1) / 2 * w), int((1 - y) / 2 * h)
}

// DrawBorder outlines the arena.
func (c *Canvas) DrawBorder() {
	x1, y1 := c.Width*2-1, c.Height*4-1
	c.DrawLine(0, 0, x1, 0)
	c.DrawLine(x1, 0, x1, y1)
	c.DrawLine(x1, y1, 0, y1)
	c.DrawLine(0, y1, 0, 0)
}

// DrawGeometry outlines every circle of g. Device-resident geometry has no
// host vertices and draws nothing.
func (c *Canvas) DrawGeometry(g *render.Geometry) {
	if g == nil || g.Resident() || g.Points == 0 {
		return
	}
	step := max(1, g.Points/maxSegments)
	for i := 0; i < g.Bodies(); i++ {
		v := g.Circle(i)
		x0, y0 := c.Project(float64(v[0]), float64(v[1]))
		px, py := x0, y0
		for k := step; k < g.Points; k += step {
			x, y := c.Project(float64(v[2*k]), float64(v[2*k+1]))
			c.DrawLine(px, py, x, y)
			px, py = x, y
		}
		c.DrawLine(px, py, x0, y0)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
