package physics

import "github.com/san-kum/bounce/internal/dynamo"

// Arena bounds on both axes.
const (
	ArenaMin = -1.0
	ArenaMax = 1.0
)

// WallBounce advances b by dt and negates each velocity component whose axis
// has the ball's edge past a wall. Positions are not clamped.
func WallBounce(b *dynamo.Body, dt float64) {
	b.Center.X += b.Velocity.X * dt
	b.Center.Y += b.Velocity.Y * dt

	if b.Center.X+b.Radius > ArenaMax || b.Center.X-b.Radius < ArenaMin {
		b.Velocity.X = -b.Velocity.X
	}
	if b.Center.Y+b.Radius > ArenaMax || b.Center.Y-b.Radius < ArenaMin {
		b.Velocity.Y = -b.Velocity.Y
	}
}

// WallPass runs WallBounce over bodies[start:end].
func WallPass(bodies dynamo.State, dt float64, start, end int) {
	for i := start; i < end; i++ {
		WallBounce(&bodies[i], dt)
	}
}
