package sim

import (
	"context"
	"errors"
	"sync"

	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/mesh"
)

// ErrSharedState is returned when ensemble options would hand the same
// metric or observer to every concurrent run.
var ErrSharedState = errors.New("ensemble options must not carry metrics or observers, use AddMetric")

// Ensemble runs independent simulators that differ only in seed.
type Ensemble struct {
	cfg       *config.Config
	meshes    *mesh.Registry
	numRuns   int
	newMetric []func() Metric
	opts      []Option
}

// NewEnsemble prepares numRuns runs of cfg. opts are applied to every run, so
// they may only carry shared read-only state such as a logger or noise
// source; per-run metrics go through AddMetric.
func NewEnsemble(cfg *config.Config, meshes *mesh.Registry, numRuns int, opts ...Option) *Ensemble {
	return &Ensemble{cfg: cfg, meshes: meshes, numRuns: numRuns, opts: opts}
}

// AddMetric registers a metric constructor; each run gets its own instance.
func (e *Ensemble) AddMetric(fn func() Metric) { e.newMetric = append(e.newMetric, fn) }

// Run executes numRuns simulations concurrently with seeds cfg.Seed,
// cfg.Seed+1, ... Results are returned in seed order.
func (e *Ensemble) Run(ctx context.Context, frames int) ([]*Result, error) {
	var scratch Simulator
	for _, opt := range e.opts {
		opt(&scratch)
	}
	if len(scratch.metrics) > 0 || len(scratch.observers) > 0 {
		return nil, ErrSharedState
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := e.cfg.Clone()
			cfgCopy.Seed = e.cfg.Seed + int64(idx)

			opts := append([]Option{}, e.opts...)
			for _, fn := range e.newMetric {
				opts = append(opts, WithMetric(fn()))
			}

			s, err := New(cfgCopy, e.meshes, opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, frames)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
