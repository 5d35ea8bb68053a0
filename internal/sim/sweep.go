package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Sweep fans one simulation per parameter value out across a bounded
// worker group. Param is the swept name; the run closure owns applying
// each value, since a value may land either on a model input (rebuilt
// rates) or directly on a kernel rate.
type Sweep struct {
	Param   string
	Values  []float64
	Workers int
}

// Run invokes run once per value and returns results aligned with
// Values. The first failing point cancels the rest. Each invocation
// must build its own simulator: integrators carry scratch buffers and
// must not be shared across workers.
func (s *Sweep) Run(ctx context.Context, run func(ctx context.Context, value float64) (*Result, error)) ([]*Result, error) {
	if len(s.Values) == 0 {
		return nil, fmt.Errorf("sweep over %q has no values", s.Param)
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Result, len(s.Values))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, v := range s.Values {
		i, v := i, v
		g.Go(func() error {
			r, err := run(ctx, v)
			if err != nil {
				return fmt.Errorf("sweep point %s=%g: %w", s.Param, v, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
