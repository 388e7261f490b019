package trace_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpend/internal/trace"
)

var _ = Describe("Ring", func() {
	var r *trace.Ring

	BeforeEach(func() {
		r = trace.NewRing(3)
	})

	It("falls back to the default capacity", func() {
		Expect(trace.NewRing(0).Cap()).To(Equal(trace.DefaultCapacity))
		Expect(trace.NewRing(-4).Cap()).To(Equal(trace.DefaultCapacity))
	})

	It("starts empty", func() {
		Expect(r.Len()).To(BeZero())
		Expect(r.Points()).To(BeEmpty())
		_, ok := r.Last()
		Expect(ok).To(BeFalse())
	})

	It("keeps points oldest first while filling", func() {
		r.Push(trace.Point{X: 1})
		r.Push(trace.Point{X: 2})

		Expect(r.Len()).To(Equal(2))
		Expect(r.Points()).To(Equal([]trace.Point{{X: 1}, {X: 2}}))
	})

	It("evicts the oldest point once full", func() {
		for i := 1; i <= 5; i++ {
			r.Push(trace.Point{X: float64(i), Y: float64(-i)})
		}

		Expect(r.Len()).To(Equal(3))
		Expect(r.Points()).To(Equal([]trace.Point{{X: 3, Y: -3}, {X: 4, Y: -4}, {X: 5, Y: -5}}))

		last, ok := r.Last()
		Expect(ok).To(BeTrue())
		Expect(last).To(Equal(trace.Point{X: 5, Y: -5}))
	})

	It("visits points in order with Each", func() {
		for i := 1; i <= 4; i++ {
			r.Push(trace.Point{X: float64(i)})
		}
		var seen []float64
		r.Each(func(i int, p trace.Point) {
			Expect(i).To(Equal(len(seen)))
			seen = append(seen, p.X)
		})
		Expect(seen).To(Equal([]float64{2, 3, 4}))
	})

	It("never grows past its capacity", func() {
		for i := 0; i < 10000; i++ {
			r.Push(trace.Point{X: float64(i)})
		}
		Expect(r.Len()).To(Equal(r.Cap()))
	})

	It("empties on Reset", func() {
		r.Push(trace.Point{X: 1})
		r.Reset()
		Expect(r.Len()).To(BeZero())

		r.Push(trace.Point{X: 7})
		Expect(r.Points()).To(Equal([]trace.Point{{X: 7}}))
	})
})
