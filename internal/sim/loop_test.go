package sim_test

import (
	"bytes"
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpend/internal/logging"
	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/sim"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newPair(theta1, theta2 float64) *pendulum.Pair {
	p, err := pendulum.NewPair(
		pendulum.Params{Angle: theta1, Mass: 10, Length: 100},
		pendulum.Params{Angle: theta2, Mass: 10, Length: 100},
		0.05,
	)
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Loop", func() {
	var frames []sim.Frame

	record := sim.ObserverFunc(func(f sim.Frame) { frames = append(frames, f) })

	BeforeEach(func() {
		frames = nil
	})

	Context("in reference mode", func() {
		It("takes exactly one physics step per tick and then renders", func() {
			pair := newPair(1.0, 2.0)
			ref := pair.Clone()
			loop := sim.NewLoop(pair, sim.WithObserver(record))

			for i := 0; i < 3; i++ {
				Expect(loop.Tick()).To(Equal(1))
				ref.Advance()
			}

			Expect(loop.Steps()).To(Equal(3))
			Expect(loop.Time()).To(BeNumerically("~", 0.15, 1e-12))
			Expect(pair.Vector()).To(Equal(ref.Vector()))
			Expect(frames).To(HaveLen(3))
			Expect(frames[2].Step).To(Equal(3))
		})

		It("hands the renderer Cartesian positions of the stepped state", func() {
			pair := newPair(0.4, -0.9)
			loop := sim.NewLoop(pair, sim.WithObserver(record))
			loop.Tick()

			x1, y1, x2, y2 := pair.Positions()
			f := frames[0]
			Expect(f.Pair).To(BeIdenticalTo(pair))
			Expect([]float64{f.X1, f.Y1, f.X2, f.Y2}).To(Equal([]float64{x1, y1, x2, y2}))
		})
	})

	Context("with a fixed timestep", func() {
		var clock *fakeClock

		BeforeEach(func() {
			clock = &fakeClock{now: time.Unix(1000, 0)}
		})

		It("steps according to elapsed wall time", func() {
			loop := sim.NewLoop(newPair(1, 1), sim.WithClock(clock), sim.WithFixedTimestep(1, 8))

			Expect(loop.Tick()).To(Equal(0))

			clock.Advance(120 * time.Millisecond)
			Expect(loop.Tick()).To(Equal(2))

			clock.Advance(40 * time.Millisecond)
			Expect(loop.Tick()).To(Equal(1))
			Expect(loop.Steps()).To(Equal(3))
		})

		It("applies the time scale", func() {
			loop := sim.NewLoop(newPair(1, 1), sim.WithClock(clock), sim.WithFixedTimestep(2, 8))
			loop.Tick()
			clock.Advance(100 * time.Millisecond)
			Expect(loop.Tick()).To(Equal(4))
		})

		It("caps steps per tick and drops the backlog", func() {
			loop := sim.NewLoop(newPair(1, 1), sim.WithClock(clock), sim.WithFixedTimestep(1, 3))
			loop.Tick()

			clock.Advance(10 * time.Second)
			Expect(loop.Tick()).To(Equal(3))

			clock.Advance(10 * time.Millisecond)
			Expect(loop.Tick()).To(Equal(0))
		})

		It("renders once per tick even without a physics step", func() {
			loop := sim.NewLoop(newPair(1, 1), sim.WithClock(clock), sim.WithFixedTimestep(1, 8), sim.WithObserver(record))
			loop.Tick()
			loop.Tick()
			Expect(frames).To(HaveLen(2))
			Expect(loop.Steps()).To(BeZero())
		})
	})

	It("warns once and keeps running after the state goes non-finite", func() {
		var buf bytes.Buffer
		pair := newPair(1, 1)
		pair.Outer.AngularVelocity = math.NaN()

		loop := sim.NewLoop(pair, sim.WithLogger(logging.NewLogger("warn", &buf)))
		loop.Tick()
		loop.Tick()

		Expect(loop.Singular()).To(BeTrue())
		Expect(loop.Steps()).To(Equal(2))
		Expect(bytes.Count(buf.Bytes(), []byte("numerical singularity"))).To(Equal(1))
	})

	It("clears counters on Reset", func() {
		loop := sim.NewLoop(newPair(1, 1))
		loop.Tick()

		fresh := newPair(0.5, 0.5)
		loop.Reset(fresh)
		Expect(loop.Steps()).To(BeZero())
		Expect(loop.Time()).To(BeZero())
		Expect(loop.Pair()).To(BeIdenticalTo(fresh))
	})

	Describe("Run", func() {
		It("returns the context error when cancelled", func() {
			loop := sim.NewLoop(newPair(1, 1))
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			Expect(loop.Run(ctx, 200)).To(MatchError(context.DeadlineExceeded))
			Expect(loop.Steps()).To(BeNumerically(">", 0))
		})

		It("returns nil after Stop", func() {
			loop := sim.NewLoop(newPair(1, 1))
			done := make(chan error, 1)
			go func() { done <- loop.Run(context.Background(), 100) }()

			loop.Stop()
			loop.Stop()
			Eventually(done).Should(Receive(BeNil()))
		})

		It("rejects a non-positive frame rate", func() {
			loop := sim.NewLoop(newPair(1, 1))
			Expect(loop.Run(context.Background(), 0)).To(MatchError(sim.ErrInvalidConfig))
		})
	})
})
