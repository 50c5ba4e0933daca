// Package viz draws a running simulation in the terminal.
//
// [Viewer] is a Bubble Tea model that polls the frame driver on every tick and
// draws the circle outlines on a Braille [Canvas], next to a panel with the
// metrics of the run and an energy chart.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
