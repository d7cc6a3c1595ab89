package algolanczos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cwbudde/algo-lanczos/hamiltonian"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSolveBatchMatchesSingle(t *testing.T) {
	t.Parallel()

	ms := []*hamiltonian.Matrix{
		heisenberg(t, 4),
		heisenberg(t, 6),
		heisenberg(t, 8),
	}

	opts := DefaultOptions()
	sps, err := SolveBatch(context.Background(), ms, opts)
	require.NoError(t, err)
	require.Len(t, sps, len(ms))

	for i, m := range ms {
		single := opts
		single.Seed = opts.Seed + int64(i)
		want, err := Solve(context.Background(), m, single)
		require.NoError(t, err)
		require.Equal(t, want.Eigenvalues, sps[i].Eigenvalues, "matrix %d", i)
		require.True(t, sps[i].Converged)
	}
}

func TestSolveBatchEmpty(t *testing.T) {
	t.Parallel()

	sps, err := SolveBatch(context.Background(), nil, DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, sps)
}

func TestSolveBatchPropagatesError(t *testing.T) {
	t.Parallel()

	ms := []*hamiltonian.Matrix{heisenberg(t, 4), nil}
	_, err := SolveBatch(context.Background(), ms, DefaultOptions())
	require.ErrorIs(t, err, ErrNilMatrix)
}

func TestSolveBatchSingleWorker(t *testing.T) {
	t.Parallel()

	ms := []*hamiltonian.Matrix{heisenberg(t, 4), heisenberg(t, 4)}
	opts := DefaultOptions()
	opts.Workers = 1

	sps, err := SolveBatch(context.Background(), ms, opts)
	require.NoError(t, err)
	require.Len(t, sps, 2)
	for _, sp := range sps {
		require.True(t, sp.Converged)
	}
}
