package algolanczos

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-lanczos/hamiltonian"
)

// SolveBatch diagonalizes several Hamiltonians concurrently, at most
// Options.Workers at a time. Results are indexed like ms. Each solve
// derives its start vector from Options.Seed offset by its index, so a
// batch is reproducible and its elements match equivalent single solves.
//
// The first error cancels remaining solves; entries still hold the
// spectra of solves that completed before cancellation.
func SolveBatch(ctx context.Context, ms []*hamiltonian.Matrix, opts Options) ([]*Spectrum, error) {
	out := make([]*Spectrum, len(ms))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for i, m := range ms {
		i, m := i, m
		g.Go(func() error {
			o := opts
			o.Seed = opts.Seed + int64(i)
			sp, err := Solve(ctx, m, o)
			out[i] = sp
			return err
		})
	}

	return out, g.Wait()
}
