package dynamo

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

// Spawn creates n bodies: a uniformly chosen radius class, a center that keeps
// the ball fully inside the arena, and a velocity uniform in [-1,1] per axis.
func Spawn(n int, rng *rand.Rand) State {
	bodies, _ := SpawnClasses(n, rng, nil)
	return bodies
}

// SpawnClasses is Spawn restricted to the given radius classes. A nil or
// empty list allows every class.
func SpawnClasses(n int, rng *rand.Rand, classes []int) (State, error) {
	for _, k := range classes {
		if k < 1 || k > RadiusClasses {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRadius, &InputError{
				Field:  "class",
				Value:  strconv.Itoa(k),
				Reason: fmt.Sprintf("must be between 1 and %d", RadiusClasses),
			})
		}
	}

	bodies := make(State, n)
	for i := range bodies {
		k := 1 + rng.Intn(RadiusClasses)
		if len(classes) > 0 {
			k = classes[rng.Intn(len(classes))]
		}
		r := ClassRadius(k)
		center := r2.Vec{X: uniform(rng, r-1, 1-r), Y: uniform(rng, r-1, 1-r)}
		velocity := r2.Vec{X: uniform(rng, -1, 1), Y: uniform(rng, -1, 1)}
		bodies[i] = MustBody(r, center, velocity)
	}
	return bodies, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
