package sim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/render"
	"gonum.org/v1/gonum/spatial/r2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Simulation", func() {
	ctx := context.Background()

	DescribeTable("bounces the head-on pair off each other",
		func(present render.Mode, resolve compute.ResolveMode) {
			s, err := New(ctx, Config{
				Bodies:  headOn(),
				Present: present,
				Resolve: resolve,
				Logger:  quietLogger(),
			}, cpuDevice())
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			hits := 0
			for i := 0; i < 30 && hits == 0; i++ {
				frame, err := s.Advance(ctx, 1.0/30)
				Expect(err).NotTo(HaveOccurred())
				hits += frame.Collisions
			}
			Expect(hits).To(Equal(1))

			bodies, err := s.Bodies()
			Expect(err).NotTo(HaveOccurred())
			Expect(bodies[0].Velocity.X).To(BeNumerically("~", -1, 1e-9))
			Expect(bodies[0].Velocity.Y).To(BeNumerically("~", 0, 1e-9))
			Expect(bodies[1].Velocity.X).To(BeNumerically("~", 1, 1e-9))
			Expect(bodies[1].Velocity.Y).To(BeNumerically("~", 0, 1e-9))
		},
		Entry("host presentation, ordered", render.ModeHost, compute.ResolveOrdered),
		Entry("device presentation, ordered", render.ModeDevice, compute.ResolveOrdered),
		Entry("host presentation, accumulate", render.ModeHost, compute.ResolveAccumulate),
	)

	It("presents the same geometry in both modes", func() {
		var geoms []*render.Geometry
		for _, mode := range []render.Mode{render.ModeHost, render.ModeDevice} {
			s, err := New(ctx, Config{Balls: 12, Seed: 9, Points: 48, Present: mode, Logger: quietLogger()}, cpuDevice())
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			frame, err := s.Advance(ctx, 0.2)
			Expect(err).NotTo(HaveOccurred())
			geoms = append(geoms, frame.Geometry)
		}
		Expect(geoms[0].Points).To(Equal(48))
		Expect(geoms[1].Vertices).To(Equal(geoms[0].Vertices))
		Expect(geoms[1].Colors).To(Equal(geoms[0].Colors))
	})

	It("spawns the same bodies for the same seed", func() {
		a, err := New(ctx, Config{Balls: 10, Seed: 42, Logger: quietLogger()}, cpuDevice())
		Expect(err).NotTo(HaveOccurred())
		defer a.Close()
		b, err := New(ctx, Config{Balls: 10, Seed: 42, Logger: quietLogger()}, cpuDevice())
		Expect(err).NotTo(HaveOccurred())
		defer b.Close()

		Expect(a.Initial()).To(Equal(b.Initial()))
		Expect(a.Pairs()).To(HaveLen(45))
	})

	It("matches the host reference step", func() {
		s, err := New(ctx, Config{Balls: 10, Seed: 5, Resolve: compute.ResolveAccumulate, Logger: quietLogger()}, cpuDevice())
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		want, wantHits := Step(s.Initial(), s.Pairs(), 0.1, compute.ResolveAccumulate)
		frame, err := s.Advance(ctx, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Collisions).To(Equal(wantHits))

		got, err := s.Bodies()
		Expect(err).NotTo(HaveOccurred())
		for i := range want {
			Expect(got[i].Center).To(Equal(want[i].Center))
			Expect(got[i].Velocity.X).To(BeNumerically("~", want[i].Velocity.X, 1e-12))
			Expect(got[i].Velocity.Y).To(BeNumerically("~", want[i].Velocity.Y, 1e-12))
		}
	})

	Describe("setup", func() {
		It("rejects a non-positive ball count before touching the device", func() {
			b := &countingBackend{}
			_, err := New(ctx, Config{Balls: 0, Logger: quietLogger()}, countingDevice(b))
			Expect(errors.Is(err, dynamo.ErrInput)).To(BeTrue())
			Expect(b.CPUBackend).To(BeNil())
		})

		It("rejects given bodies whose radius is not an allowed class", func() {
			bodies := headOn()
			bodies[1].Radius = 0.07
			b := &countingBackend{}
			_, err := New(ctx, Config{Bodies: bodies, Logger: quietLogger()}, countingDevice(b))
			Expect(errors.Is(err, dynamo.ErrInvalidRadius)).To(BeTrue())

			var ie *dynamo.InputError
			Expect(errors.As(err, &ie)).To(BeTrue())
			Expect(ie.Field).To(Equal("radius"))
			Expect(err.Error()).To(ContainSubstring("body 1"))
			Expect(b.CPUBackend).To(BeNil())
		})

		It("rejects given bodies with a non-finite velocity", func() {
			bodies := headOn()
			bodies[0].Velocity = r2.Vec{X: math.NaN()}
			_, err := New(ctx, Config{Bodies: bodies, Logger: quietLogger()}, cpuDevice())

			var ie *dynamo.InputError
			Expect(errors.As(err, &ie)).To(BeTrue())
			Expect(ie.Field).To(Equal("bodies"))
			Expect(errors.Is(err, dynamo.ErrInvalidRadius)).To(BeFalse())
		})

		It("rejects an unknown presentation mode", func() {
			_, err := New(ctx, Config{Balls: 3, Present: "window", Logger: quietLogger()}, cpuDevice())
			Expect(errors.Is(err, dynamo.ErrInput)).To(BeTrue())
		})

		It("releases the device when the kernel build fails", func() {
			b := &countingBackend{failBuild: true}
			s, err := New(ctx, Config{Balls: 4, Logger: quietLogger()}, countingDevice(b))
			Expect(s).To(BeNil())

			var be *dynamo.BuildError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Log).To(Equal("0:12: error: syntax error"))
			Expect(b.closes).To(Equal(1))
		})

		It("releases the device when the vertex buffer cannot be shared", func() {
			b := &countingBackend{failShare: true}
			_, err := New(ctx, Config{Balls: 4, Present: render.ModeDevice, Logger: quietLogger()}, countingDevice(b))
			Expect(errors.Is(err, dynamo.ErrResource)).To(BeTrue())
			Expect(b.closes).To(Equal(1))
		})

		It("releases nothing twice", func() {
			b := &countingBackend{}
			s, err := New(ctx, Config{Balls: 4, Logger: quietLogger()}, countingDevice(b))
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Close()).To(Succeed())
			Expect(s.Close()).To(Succeed())
			Expect(b.closes).To(Equal(1))

			_, err = s.Advance(ctx, 0.1)
			Expect(errors.Is(err, dynamo.ErrResource)).To(BeTrue())
		})

		It("fails with a context error when cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := New(cancelled, Config{Balls: 4, Logger: quietLogger()}, cpuDevice())
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
