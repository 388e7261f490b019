package integrators

import "testing"

func benchmarkIntegrator(b *testing.B, integ Integrator) {
	p := smallSwing(b, 0.01)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Step(p)
	}
}

func BenchmarkSemiImplicitEuler(b *testing.B) { benchmarkIntegrator(b, NewSemiImplicitEuler()) }
func BenchmarkExplicitEuler(b *testing.B)     { benchmarkIntegrator(b, NewExplicitEuler()) }
func BenchmarkRK4(b *testing.B)               { benchmarkIntegrator(b, NewRK4()) }
func BenchmarkLeapfrog(b *testing.B)          { benchmarkIntegrator(b, NewLeapfrog()) }
