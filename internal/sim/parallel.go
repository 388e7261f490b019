package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/pendulum"
)

// Ensemble runs copies of one pair whose inner angle is offset by
// i*Perturbation, showing how fast nearby trajectories separate.
type Ensemble struct {
	NewIntegrator func() integrators.Integrator
	Runs          int
	Perturbation  float64
}

func NewEnsemble(newInteg func() integrators.Integrator, runs int, perturbation float64) *Ensemble {
	return &Ensemble{NewIntegrator: newInteg, Runs: runs, Perturbation: perturbation}
}

func (e *Ensemble) Run(ctx context.Context, pair *pendulum.Pair, cfg Config) ([]*Result, error) {
	if e.Runs <= 0 {
		return nil, fmt.Errorf("%w: ensemble runs must be positive, got %d", ErrInvalidConfig, e.Runs)
	}
	if e.NewIntegrator == nil {
		return nil, fmt.Errorf("%w: ensemble needs an integrator constructor", ErrInvalidConfig)
	}
	results := make([]*Result, e.Runs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i := 0; i < e.Runs; i++ {
		g.Go(func() error {
			p := pair.Clone()
			p.Inner.Angle += float64(i) * e.Perturbation

			res, err := New(e.NewIntegrator()).Run(ctx, p, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
