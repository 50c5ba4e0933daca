package physics

import (
	"math"

	"github.com/san-kum/bounce/internal/dynamo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Collide", func() {
	It("swaps velocities of equal bodies meeting head-on", func() {
		a := dynamo.MustBody(0.1, r2.Vec{X: -0.09}, r2.Vec{X: 1})
		b := dynamo.MustBody(0.1, r2.Vec{X: 0.09}, r2.Vec{X: -1})

		Expect(Collide(&a, &b)).To(BeTrue())
		Expect(a.Velocity.X).To(BeNumerically("~", -1, 1e-12))
		Expect(a.Velocity.Y).To(BeNumerically("~", 0, 1e-12))
		Expect(b.Velocity.X).To(BeNumerically("~", 1, 1e-12))
		Expect(b.Velocity.Y).To(BeNumerically("~", 0, 1e-12))
	})

	It("leaves non-overlapping bodies untouched", func() {
		a := dynamo.MustBody(0.1, r2.Vec{X: -0.1}, r2.Vec{X: 1, Y: 0.2})
		b := dynamo.MustBody(0.1, r2.Vec{X: 0.1}, r2.Vec{X: -1, Y: 0.4})

		Expect(Collide(&a, &b)).To(BeFalse(), "touching is not overlapping")
		Expect(a.Velocity).To(Equal(r2.Vec{X: 1, Y: 0.2}))
		Expect(b.Velocity).To(Equal(r2.Vec{X: -1, Y: 0.4}))
	})

	It("responds to every overlap, even when the bodies are moving apart", func() {
		a := dynamo.MustBody(0.1, r2.Vec{X: -0.05}, r2.Vec{X: -1})
		b := dynamo.MustBody(0.1, r2.Vec{X: 0.05}, r2.Vec{X: 1})

		Expect(Overlapping(a, b)).To(BeTrue())
		Expect(Collide(&a, &b)).To(BeTrue())
		Expect(a.Velocity.X).To(BeNumerically("~", 1, 1e-12))
		Expect(a.Velocity.Y).To(BeNumerically("~", 0, 1e-12))
		Expect(b.Velocity.X).To(BeNumerically("~", -1, 1e-12))
		Expect(b.Velocity.Y).To(BeNumerically("~", 0, 1e-12))
	})

	It("ignores coincident centers", func() {
		a := dynamo.MustBody(0.05, r2.Vec{X: 0.3, Y: 0.3}, r2.Vec{X: 1})
		b := dynamo.MustBody(0.15, r2.Vec{X: 0.3, Y: 0.3}, r2.Vec{X: -1})

		Expect(Collide(&a, &b)).To(BeFalse())
	})

	It("conserves kinetic energy and momentum for arbitrary masses", func() {
		rng := rand.New(rand.NewSource(11))
		for n := 0; n < 500; n++ {
			ra := dynamo.ClassRadius(1 + rng.Intn(3))
			rb := dynamo.ClassRadius(1 + rng.Intn(3))
			angle := rng.Float64() * 2 * math.Pi
			dist := (ra + rb) * (0.2 + 0.75*rng.Float64())
			a := dynamo.MustBody(ra, r2.Vec{}, r2.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1})
			b := dynamo.MustBody(rb, r2.Vec{X: dist * math.Cos(angle), Y: dist * math.Sin(angle)},
				r2.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1})

			s := dynamo.State{a, b}
			e0, p0 := s.KineticEnergy(), s.Momentum()
			Collide(&s[0], &s[1])
			e1, p1 := s.KineticEnergy(), s.Momentum()

			Expect(e1).To(BeNumerically("~", e0, 1e-9))
			Expect(p1.X).To(BeNumerically("~", p0.X, 1e-9))
			Expect(p1.Y).To(BeNumerically("~", p0.Y, 1e-9))
		}
	})

	It("changes velocity only along the line of centers", func() {
		a := dynamo.MustBody(0.15, r2.Vec{}, r2.Vec{X: 0.5, Y: 0.5})
		b := dynamo.MustBody(0.05, r2.Vec{X: 0.1, Y: 0.1}, r2.Vec{X: -0.3, Y: 0.1})

		dva, dvb, ok := Impulse(a, b)
		Expect(ok).To(BeTrue())
		// line of centers is the diagonal, so both deltas are along (1,1)
		Expect(dva.X).To(BeNumerically("~", dva.Y, 1e-12))
		Expect(dvb.X).To(BeNumerically("~", dvb.Y, 1e-12))
		// the heavier ball changes less
		Expect(r2.Norm(dva)).To(BeNumerically("<", r2.Norm(dvb)))
	})

	It("matches Impulse when applied in place", func() {
		a := dynamo.MustBody(0.1, r2.Vec{X: 0.02, Y: -0.04}, r2.Vec{X: 0.7, Y: 0.1})
		b := dynamo.MustBody(0.15, r2.Vec{X: 0.2, Y: 0.05}, r2.Vec{X: -0.4, Y: -0.2})

		dva, dvb, ok := Impulse(a, b)
		Expect(ok).To(BeTrue())
		wantA, wantB := r2.Add(a.Velocity, dva), r2.Add(b.Velocity, dvb)

		Expect(Collide(&a, &b)).To(BeTrue())
		Expect(a.Velocity).To(Equal(wantA))
		Expect(b.Velocity).To(Equal(wantB))
	})
})

var _ = Describe("PairPass", func() {
	It("reproduces the two-ball end-to-end scenario", func() {
		bodies := dynamo.State{
			dynamo.MustBody(0.1, r2.Vec{X: -0.5}, r2.Vec{X: 1}),
			dynamo.MustBody(0.1, r2.Vec{X: 0.5}, r2.Vec{X: -1}),
		}
		pairs := dynamo.BuildPairs(len(bodies))
		dt := 1.0 / 30

		hits := 0
		for frame := 0; frame < 30 && hits == 0; frame++ {
			WallPass(bodies, dt, 0, len(bodies))
			hits += PairPass(bodies, pairs, 0, len(pairs))
		}

		Expect(hits).To(Equal(1))
		Expect(bodies[0].Velocity.X).To(BeNumerically("~", -1, 1e-9))
		Expect(bodies[0].Velocity.Y).To(BeNumerically("~", 0, 1e-9))
		Expect(bodies[1].Velocity.X).To(BeNumerically("~", 1, 1e-9))
		Expect(bodies[1].Velocity.Y).To(BeNumerically("~", 0, 1e-9))
	})
})

var _ = Describe("AccumulatePass", func() {
	It("matches PairPass when no body is shared between colliding pairs", func() {
		bodies := dynamo.State{
			dynamo.MustBody(0.05, r2.Vec{X: -0.5, Y: 0.5}, r2.Vec{X: 1}),
			dynamo.MustBody(0.1, r2.Vec{X: -0.4, Y: 0.5}, r2.Vec{X: -1}),
			dynamo.MustBody(0.15, r2.Vec{X: 0.5, Y: -0.5}, r2.Vec{Y: 1}),
			dynamo.MustBody(0.05, r2.Vec{X: 0.5, Y: -0.35}, r2.Vec{Y: -0.5}),
		}
		pairs := dynamo.BuildPairs(len(bodies))
		seq, acc := bodies.Clone(), bodies.Clone()

		Expect(PairPass(seq, pairs, 0, len(pairs))).To(Equal(2))
		Expect(AccumulatePass(acc, pairs)).To(Equal(2))
		for i := range seq {
			Expect(acc[i].Velocity.X).To(BeNumerically("~", seq[i].Velocity.X, 1e-12))
			Expect(acc[i].Velocity.Y).To(BeNumerically("~", seq[i].Velocity.Y, 1e-12))
		}
	})

	It("departs from PairPass and loses energy when a body is shared", func() {
		bodies := dynamo.State{
			dynamo.MustBody(0.1, r2.Vec{}, r2.Vec{}),
			dynamo.MustBody(0.1, r2.Vec{X: -0.15}, r2.Vec{X: 1}),
			dynamo.MustBody(0.1, r2.Vec{X: 0.15}, r2.Vec{X: -1}),
		}
		pairs := dynamo.BuildPairs(3)
		seq, acc := bodies.Clone(), bodies.Clone()

		Expect(PairPass(seq, pairs, 0, len(pairs))).To(Equal(2))
		Expect(AccumulatePass(acc, pairs)).To(Equal(2))

		Expect(seq.KineticEnergy()).To(BeNumerically("~", bodies.KineticEnergy(), 1e-9))
		Expect(acc.KineticEnergy()).To(BeNumerically("<", bodies.KineticEnergy()))
		Expect(seq[1].Velocity.X).To(BeNumerically("~", 0, 1e-12))
		Expect(seq[2].Velocity.X).To(BeNumerically("~", 1, 1e-12))
		Expect(acc[2].Velocity.X).To(BeNumerically("~", 0, 1e-12))
	})

	It("does not depend on pair order when a body is shared", func() {
		bodies := dynamo.State{
			dynamo.MustBody(0.1, r2.Vec{}, r2.Vec{}),
			dynamo.MustBody(0.1, r2.Vec{X: -0.15}, r2.Vec{X: 1}),
			dynamo.MustBody(0.1, r2.Vec{X: 0.15}, r2.Vec{X: -1}),
		}
		forward := dynamo.BuildPairs(3)
		backward := dynamo.PairIndex{forward[2], forward[1], forward[0]}

		a, b := bodies.Clone(), bodies.Clone()
		AccumulatePass(a, forward)
		AccumulatePass(b, backward)
		for i := range a {
			Expect(a[i].Velocity).To(Equal(b[i].Velocity))
		}
	})
})
