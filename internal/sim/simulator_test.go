package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/metrics"
	"github.com/san-kum/dpend/internal/pendulum"
	"github.com/san-kum/dpend/internal/sim"
)

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string                        { return "count" }
func (c *countingMetric) Observe(p *pendulum.Pair, t float64) { c.count++ }
func (c *countingMetric) Value() float64                      { return float64(c.count) }
func (c *countingMetric) Reset()                              { c.count = 0 }

func newRK4() integrators.Integrator { return integrators.NewRK4() }

var _ = Describe("Simulator", func() {
	It("records every step and leaves the input untouched", func() {
		pair := newPair(1.2, 0.3)
		before := pair.Vector()

		res, err := sim.New(nil).Run(context.Background(), pair, sim.Config{Steps: 10, SampleEvery: 1})
		Expect(err).NotTo(HaveOccurred())

		Expect(res.States).To(HaveLen(11))
		Expect(res.Times).To(HaveLen(11))
		Expect(res.Times[10]).To(BeNumerically("~", 0.5, 1e-12))
		Expect(res.StepsTaken).To(Equal(10))
		Expect(pair.Vector()).To(Equal(before))

		ref := pair.Clone()
		for i := 0; i < 10; i++ {
			ref.Advance()
		}
		Expect(res.Final.Vector()).To(Equal(ref.Vector()))
		Expect(res.States[10]).To(Equal(ref.Vector()))
	})

	It("downsamples but always keeps the final state", func() {
		res, err := sim.New(nil).Run(context.Background(), newPair(1, 1), sim.Config{Steps: 10, SampleEvery: 4})
		Expect(err).NotTo(HaveOccurred())
		// t=0, steps 4, 8 and the last one
		Expect(res.States).To(HaveLen(4))
		Expect(res.Times[3]).To(BeNumerically("~", 0.5, 1e-12))
	})

	DescribeTable("rejects invalid configs",
		func(cfg sim.Config) {
			_, err := sim.New(nil).Run(context.Background(), newPair(1, 1), cfg)
			Expect(err).To(MatchError(sim.ErrInvalidConfig))
		},
		Entry("zero steps", sim.Config{Steps: 0}),
		Entry("negative steps", sim.Config{Steps: -5}),
		Entry("negative sampling", sim.Config{Steps: 5, SampleEvery: -1}),
	)

	It("feeds metrics the initial state and every stepped state", func() {
		s := sim.New(integrators.NewRK4())
		m := &countingMetric{}
		s.AddMetric(m)

		res, err := s.Run(context.Background(), newPair(1, 1), sim.Config{Steps: 25})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 26.0))
	})

	It("lets metrics see the state after the last step", func() {
		s := sim.New(nil)
		s.AddMetric(metrics.NewMaxAngularSpeed())
		s.AddMetric(metrics.NewSingularities())

		res, err := s.Run(context.Background(), newPair(0.5, 0.5), sim.Config{Steps: 1})
		Expect(err).NotTo(HaveOccurred())

		final := math.Max(math.Abs(res.Final.Inner.AngularVelocity), math.Abs(res.Final.Outer.AngularVelocity))
		Expect(final).To(BeNumerically(">", 0))
		Expect(res.Metrics["max_angular_speed"]).To(Equal(final))
		Expect(res.Metrics["singularities"]).To(BeZero())
	})

	It("counts the non-finite initial and final states", func() {
		s := sim.New(nil)
		s.AddMetric(metrics.NewSingularities())

		pair := newPair(1, 1)
		pair.Outer.AngularVelocity = math.Inf(1)

		res, err := s.Run(context.Background(), pair, sim.Config{Steps: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final.Finite()).To(BeFalse())
		Expect(res.Metrics["singularities"]).To(Equal(2.0))
	})

	It("notifies observers after each step", func() {
		s := sim.New(nil)
		var last sim.Frame
		n := 0
		s.AddObserver(sim.ObserverFunc(func(f sim.Frame) { last = f; n++ }))

		_, err := s.Run(context.Background(), newPair(1, 1), sim.Config{Steps: 7})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(7))
		Expect(last.Step).To(Equal(7))
	})

	It("reports energy drift of the reference integrator as small but non-zero", func() {
		res, err := sim.New(nil).Run(context.Background(), newPair(0.3, 0.3), sim.Config{Steps: 400})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.EnergyDrift).To(BeNumerically(">", 0))
		Expect(res.EnergyDrift).To(BeNumerically("<", 0.01))
	})

	It("collects singularity errors without aborting", func() {
		pair := newPair(1, 1)
		pair.Inner.AngularVelocity = math.Inf(1)

		res, err := sim.New(nil).Run(context.Background(), pair, sim.Config{Steps: 3, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(3))
		Expect(res.Errors).To(HaveLen(3))

		var serr *sim.SimulationError
		Expect(errors.As(res.Errors[0], &serr)).To(BeTrue())
		Expect(serr.Step).To(Equal(0))
		Expect(errors.Is(res.Errors[0], pendulum.ErrSingular)).To(BeTrue())
	})

	It("stops on the first invalid state when asked to", func() {
		pair := newPair(1, 1)
		pair.Inner.AngularVelocity = math.NaN()

		res, err := sim.New(nil).Run(context.Background(), pair,
			sim.Config{Steps: 50, ValidateState: true, StopOnInvalid: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(1))
		Expect(res.Errors).To(HaveLen(1))
	})

	It("returns the partial result on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := sim.New(nil).Run(ctx, newPair(1, 1), sim.Config{Steps: 100})
		Expect(err).To(MatchError(context.Canceled))
		Expect(res).NotTo(BeNil())
		Expect(res.StepsTaken).To(BeZero())
	})
})

var _ = Describe("Ensemble", func() {
	It("runs perturbed copies in parallel", func() {
		ens := sim.NewEnsemble(func() integrators.Integrator { return integrators.NewSemiImplicitEuler() }, 4, 1e-6)
		pair := newPair(2.0, 2.5)

		results, err := ens.Run(context.Background(), pair, sim.Config{Steps: 50})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		Expect(results[0].States[0][0]).To(Equal(2.0))
		Expect(results[3].States[0][0]).To(BeNumerically("~", 2.0+3e-6, 1e-12))
		Expect(pair.Inner.Angle).To(Equal(2.0))
	})

	DescribeTable("rejects invalid ensembles",
		func(ens *sim.Ensemble) {
			results, err := ens.Run(context.Background(), newPair(1, 1), sim.Config{Steps: 5})
			Expect(err).To(MatchError(sim.ErrInvalidConfig))
			Expect(results).To(BeNil())
		},
		Entry("negative runs", sim.NewEnsemble(newRK4, -1, 0.1)),
		Entry("zero runs", sim.NewEnsemble(newRK4, 0, 0.1)),
		Entry("no integrator", sim.NewEnsemble(nil, 2, 0.1)),
	)

	It("propagates config errors", func() {
		ens := sim.NewEnsemble(func() integrators.Integrator { return integrators.NewRK4() }, 2, 1e-3)
		_, err := ens.Run(context.Background(), newPair(1, 1), sim.Config{})
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})
})
