package sim

import (
	"context"
	"time"

	"github.com/san-kum/bounce/internal/dynamo"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Driver", func() {
	var (
		ctx   context.Context
		clock *fakeClock
		s     *Simulation
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = newFakeClock()
		var err error
		s, err = New(ctx, Config{Bodies: headOn(), Clock: clock, Logger: quietLogger()}, cpuDevice())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)
	})

	It("stays waiting and does no work below the interval", func() {
		clock.Tick(DefaultInterval - time.Millisecond)

		_, stepped, err := s.Poll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stepped).To(BeFalse())
		Expect(s.Driver().Phase()).To(Equal(Waiting))
		Expect(s.Driver().Frames()).To(BeZero())

		bodies, err := s.Bodies()
		Expect(err).NotTo(HaveOccurred())
		Expect(bodies).To(Equal(s.Initial()))
	})

	It("steps with the measured elapsed time, not the nominal one", func() {
		clock.Tick(50 * time.Millisecond)

		frame, stepped, err := s.Poll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stepped).To(BeTrue())
		Expect(frame.Index).To(Equal(1))
		Expect(frame.Dt).To(BeNumerically("~", 0.05, 1e-12))
		Expect(frame.Geometry).NotTo(BeNil())
		Expect(s.Driver().Phase()).To(Equal(Waiting))

		bodies, err := s.Bodies()
		Expect(err).NotTo(HaveOccurred())
		Expect(bodies[0].Center.X).To(BeNumerically("~", -0.45, 1e-12))
		Expect(bodies[1].Center.X).To(BeNumerically("~", 0.45, 1e-12))
	})

	It("measures each interval from the previous step", func() {
		clock.Tick(40 * time.Millisecond)
		_, stepped, _ := s.Poll(ctx)
		Expect(stepped).To(BeTrue())

		clock.Tick(20 * time.Millisecond)
		_, stepped, _ = s.Poll(ctx)
		Expect(stepped).To(BeFalse())

		clock.Tick(20 * time.Millisecond)
		frame, stepped, _ := s.Poll(ctx)
		Expect(stepped).To(BeTrue())
		Expect(frame.Dt).To(BeNumerically("~", 0.04, 1e-12))
		Expect(frame.Time).To(BeNumerically("~", 0.08, 1e-12))
	})

	It("runs frames until the context is cancelled", func() {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		var dts []float64
		err := s.Run(runCtx, func(f Frame) error {
			dts = append(dts, f.Dt)
			if len(dts) == 5 {
				cancel()
			}
			return nil
		})
		Expect(err).To(MatchError(context.Canceled))
		Expect(dts).To(HaveLen(5))
		for _, dt := range dts {
			Expect(dt).To(BeNumerically("~", DefaultInterval.Seconds(), 1e-9))
		}
	})

	It("notifies observers with the read-back state", func() {
		var seen []Frame
		s.AddObserver(ObserverFunc(func(f Frame) {
			seen = append(seen, Frame{Index: f.Index, Bodies: f.Bodies.Clone()})
		}))

		for i := 0; i < 3; i++ {
			_, err := s.Advance(ctx, 0.01)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(seen).To(HaveLen(3))
		Expect(seen[2].Index).To(Equal(3))
		Expect(seen[2].Bodies[0].Center.X).To(BeNumerically("~", -0.47, 1e-12))
		Expect(seen[2].Bodies.KineticEnergy()).To(BeNumerically("~", dynamo.State(headOn()).KineticEnergy(), 1e-12))
	})

	It("stops polling once the context is done", func() {
		done, cancel := context.WithCancel(ctx)
		cancel()
		clock.Tick(time.Second)
		_, stepped, err := s.Poll(done)
		Expect(err).To(MatchError(context.Canceled))
		Expect(stepped).To(BeFalse())
	})
})

var _ = Describe("Driver restart", func() {
	It("does not count paused time into the next dt", func() {
		clock := newFakeClock()
		s, err := New(context.Background(), Config{Bodies: headOn(), Clock: clock, Logger: quietLogger()}, cpuDevice())
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		clock.Tick(10 * time.Second)
		s.Driver().Restart()
		clock.Tick(40 * time.Millisecond)

		frame, stepped, err := s.Poll(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(stepped).To(BeTrue())
		Expect(frame.Dt).To(BeNumerically("~", 0.04, 1e-12))
	})
})
