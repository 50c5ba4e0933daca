package physics

import (
	"github.com/san-kum/bounce/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WallBounce", func() {
	It("leaves position and velocity unchanged when dt is zero", func() {
		bodies := dynamo.State{
			dynamo.MustBody(0.05, r2.Vec{X: 0.3, Y: -0.2}, r2.Vec{X: 0.7, Y: -0.4}),
			dynamo.MustBody(0.10, r2.Vec{X: -0.9, Y: 0.1}, r2.Vec{X: -0.5, Y: 0.9}),
			dynamo.MustBody(0.15, r2.Vec{X: 0.0, Y: 0.0}, r2.Vec{X: 0.0, Y: 0.0}),
		}
		before := bodies.Clone()

		for n := 0; n < 25; n++ {
			WallPass(bodies, 0, 0, len(bodies))
		}

		Expect(bodies).To(Equal(before))
	})

	DescribeTable("reflects only the boundary-normal component",
		func(center, velocity, expected r2.Vec) {
			b := dynamo.MustBody(0.1, center, velocity)
			WallBounce(&b, 1.0/30)
			Expect(b.Velocity).To(Equal(expected))
		},
		Entry("right wall", r2.Vec{X: 0.9, Y: 0}, r2.Vec{X: 0.5, Y: 0.3}, r2.Vec{X: -0.5, Y: 0.3}),
		Entry("left wall", r2.Vec{X: -0.9, Y: 0.2}, r2.Vec{X: -0.5, Y: -0.3}, r2.Vec{X: 0.5, Y: -0.3}),
		Entry("top wall", r2.Vec{X: 0.1, Y: 0.9}, r2.Vec{X: 0.4, Y: 0.6}, r2.Vec{X: 0.4, Y: -0.6}),
		Entry("bottom wall", r2.Vec{X: 0, Y: -0.9}, r2.Vec{X: -0.2, Y: -1}, r2.Vec{X: -0.2, Y: 1}),
	)

	It("reflects both components in a corner", func() {
		b := dynamo.MustBody(0.05, r2.Vec{X: 0.95, Y: 0.95}, r2.Vec{X: 1, Y: 1})
		WallBounce(&b, 0.01)
		Expect(b.Velocity).To(Equal(r2.Vec{X: -1, Y: -1}))
	})

	It("integrates position by velocity times dt without clamping", func() {
		b := dynamo.MustBody(0.1, r2.Vec{X: 0.85, Y: 0}, r2.Vec{X: 3, Y: 0})
		WallBounce(&b, 0.1)
		Expect(b.Center.X).To(BeNumerically("~", 1.15, 1e-12))
		Expect(b.Velocity.X).To(Equal(-3.0))
	})

	It("leaves a body well inside the arena unreflected", func() {
		b := dynamo.MustBody(0.15, r2.Vec{}, r2.Vec{X: 0.2, Y: -0.2})
		WallBounce(&b, 1.0/30)
		Expect(b.Velocity).To(Equal(r2.Vec{X: 0.2, Y: -0.2}))
		Expect(b.InBounds()).To(BeTrue())
	})
})
