package algolanczos

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-lanczos/hamiltonian"
)

// denseEigenvalues diagonalizes the matrix densely as an independent
// oracle for the Lanczos results.
func denseEigenvalues(t *testing.T, m *hamiltonian.Matrix) []float64 {
	t.Helper()

	s, ok := m.RealSym()
	require.True(t, ok, "oracle needs a real-symmetric matrix")

	var es mat.EigenSym
	require.True(t, es.Factorize(s, false))
	return es.Values(nil)
}

// distinct collapses near-degenerate values: single-vector Lanczos finds
// one Ritz value per distinct eigenvalue.
func distinct(vals []float64, tol float64) []float64 {
	var out []float64
	for _, v := range vals {
		if len(out) == 0 || v-out[len(out)-1] > tol {
			out = append(out, v)
		}
	}
	return out
}

func heisenberg(t *testing.T, sites int) *hamiltonian.Matrix {
	t.Helper()
	m, err := hamiltonian.HeisenbergChain(sites, 1, 1, 1, false)
	require.NoError(t, err)
	return m
}

func TestGroundStateHeisenberg(t *testing.T) {
	t.Parallel()

	for _, sites := range []int{2, 4, 6, 8, 10} {
		sites := sites
		t.Run(fmt.Sprintf("sites=%d", sites), func(t *testing.T) {
			t.Parallel()

			m := heisenberg(t, sites)
			want := denseEigenvalues(t, m)[0]

			sp, err := Solve(context.Background(), m, DefaultOptions())
			require.NoError(t, err)
			require.True(t, sp.Converged)
			require.Len(t, sp.Eigenvalues, 1)
			require.InDelta(t, want, sp.Eigenvalues[0], 1e-7)
		})
	}
}

func TestLowestEigenvalues(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 8)
	oracle := distinct(denseEigenvalues(t, m), 1e-8)

	opts := DefaultOptions()
	opts.NumEig = 3
	opts.Tolerance = 1e-11

	sp, err := Solve(context.Background(), m, opts)
	require.NoError(t, err)
	require.True(t, sp.Converged)
	require.Len(t, sp.Eigenvalues, 3)

	for i := 0; i < 3; i++ {
		require.InDelta(t, oracle[i], sp.Eigenvalues[i], 1e-6, "eigenvalue %d", i)
	}

	// Ascending order.
	for i := 1; i < 3; i++ {
		require.LessOrEqual(t, sp.Eigenvalues[i-1], sp.Eigenvalues[i])
	}
}

func TestRitzVectors(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 6)
	n := m.Dim()

	opts := DefaultOptions()
	opts.WantVectors = true

	sp, err := Solve(context.Background(), m, opts)
	require.NoError(t, err)
	require.Len(t, sp.Vectors, 1)

	x := sp.Vectors[0]
	require.Len(t, x, n)
	require.InDelta(t, 1, vecNorm(x), 1e-10)

	// Residual ‖H·x − λ·x‖ must be small.
	hx := make([]complex128, n)
	require.NoError(t, m.MulVec(hx, x))
	var resid float64
	for i := range hx {
		d := hx[i] - complex(sp.Eigenvalues[0], 0)*x[i]
		resid += real(d)*real(d) + imag(d)*imag(d)
	}
	require.Less(t, math.Sqrt(resid), 1e-4)

	require.Len(t, sp.Residuals, 1)
	require.Less(t, sp.Residuals[0], 1e-4)
}

func vecNorm(v []complex128) float64 {
	var s float64
	for _, x := range v {
		s += real(x)*real(x) + imag(x)*imag(x)
	}
	return math.Sqrt(s)
}

func TestTrivialDimension(t *testing.T) {
	t.Parallel()

	m, err := hamiltonian.New(1, []hamiltonian.Triplet{{Row: 0, Col: 0, Val: 2.5}})
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.WantVectors = true
	sp, err := Solve(context.Background(), m, opts)
	require.NoError(t, err)
	require.True(t, sp.Converged)
	require.Equal(t, []float64{2.5}, sp.Eigenvalues)
	require.Equal(t, [][]complex128{{1}}, sp.Vectors)
}

// TestIdentityBreakdown: on the identity the Krylov space closes after
// one step and the spectrum is exact.
func TestIdentityBreakdown(t *testing.T) {
	t.Parallel()

	var tr []hamiltonian.Triplet
	for i := 0; i < 8; i++ {
		tr = append(tr, hamiltonian.Triplet{Row: i, Col: i, Val: 1})
	}
	m, err := hamiltonian.New(8, tr)
	require.NoError(t, err)

	sp, err := Solve(context.Background(), m, DefaultOptions())
	require.NoError(t, err)
	require.True(t, sp.Converged)
	require.Equal(t, 1, sp.Iterations)
	require.InDelta(t, 1, sp.Eigenvalues[0], 1e-12)
}

// TestBreakdownRestart: asking the identity for two eigenvalues forces a
// re-seed after the first one-dimensional invariant subspace.
func TestBreakdownRestart(t *testing.T) {
	t.Parallel()

	var tr []hamiltonian.Triplet
	for i := 0; i < 4; i++ {
		tr = append(tr, hamiltonian.Triplet{Row: i, Col: i, Val: 1})
	}
	m, err := hamiltonian.New(4, tr)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.NumEig = 2

	sp, err := Solve(context.Background(), m, opts)
	require.NoError(t, err)
	require.True(t, sp.Converged)
	require.Len(t, sp.Eigenvalues, 2)
	require.InDelta(t, 1, sp.Eigenvalues[0], 1e-12)
	require.InDelta(t, 1, sp.Eigenvalues[1], 1e-12)
}

func TestNotConverged(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 8)

	opts := DefaultOptions()
	opts.MaxIter = 3
	opts.Tolerance = 1e-16

	sp, err := Solve(context.Background(), m, opts)
	require.ErrorIs(t, err, ErrNotConverged)
	require.NotNil(t, sp)
	require.False(t, sp.Converged)
	require.Equal(t, 3, sp.Iterations)
	require.Len(t, sp.Eigenvalues, 1)
}

func TestNewPlanValidation(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 3)

	_, err := NewPlan(nil, DefaultOptions())
	require.ErrorIs(t, err, ErrNilMatrix)

	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero NumEig", func(o *Options) { o.NumEig = 0 }},
		{"NumEig >= dim", func(o *Options) { o.NumEig = 8 }},
		{"zero Tolerance", func(o *Options) { o.Tolerance = 0 }},
		{"negative Tolerance", func(o *Options) { o.Tolerance = -1 }},
		{"zero MaxIter", func(o *Options) { o.MaxIter = 0 }},
		{"MaxIter not above NumEig", func(o *Options) { o.NumEig = 5; o.MaxIter = 2 }},
		{"MaxIter equal to NumEig", func(o *Options) { o.NumEig = 3; o.MaxIter = 3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			_, err := NewPlan(m, opts)
			require.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestNotHermitianRejected(t *testing.T) {
	t.Parallel()

	m, err := hamiltonian.New(2, []hamiltonian.Triplet{
		{Row: 0, Col: 1, Val: 1},
		{Row: 1, Col: 0, Val: 2},
	})
	require.NoError(t, err)

	_, err = NewPlan(m, DefaultOptions())
	require.ErrorIs(t, err, ErrNotHermitian)
}

func TestContextCanceled(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, m, DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

// cancelWriter cancels its context on the first log write, so the solve
// is interrupted between iterations rather than before the first one.
type cancelWriter struct {
	cancel context.CancelFunc
}

func (w cancelWriter) Write(p []byte) (int, error) {
	w.cancel()
	return len(p), nil
}

func TestContextCanceledMidRun(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := zerolog.New(cancelWriter{cancel: cancel}).Level(zerolog.DebugLevel)
	opts := DefaultOptions()
	opts.Tolerance = 1e-16
	opts.Logger = &log

	_, err := Solve(ctx, m, opts)
	require.ErrorIs(t, err, context.Canceled)
}

// TestAlmostFullSpectrum requests Dim-1 eigenvalues; the Krylov space
// closes before that many distinct values exist, so the solver has to
// re-seed until the basis covers the degenerate triplet states.
func TestAlmostFullSpectrum(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 2)
	want := denseEigenvalues(t, m)

	opts := DefaultOptions()
	opts.NumEig = m.Dim() - 1

	sp, err := Solve(context.Background(), m, opts)
	require.NoError(t, err)
	require.True(t, sp.Converged)
	require.Len(t, sp.Eigenvalues, m.Dim()-1)
	for i, v := range sp.Eigenvalues {
		require.InDelta(t, want[i], v, 1e-8, "eigenvalue %d", i)
	}
}

func TestPlanReuse(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 6)
	p, err := NewPlan(m, DefaultOptions())
	require.NoError(t, err)

	a, err := p.Run(context.Background())
	require.NoError(t, err)
	b, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, a.Eigenvalues, b.Eigenvalues)
	require.Equal(t, a.Iterations, b.Iterations)
}

func TestDeterminism(t *testing.T) {
	t.Parallel()

	m := heisenberg(t, 6)
	opts := DefaultOptions()
	opts.Seed = 42

	a, err := Solve(context.Background(), m, opts)
	require.NoError(t, err)
	b, err := Solve(context.Background(), m, opts)
	require.NoError(t, err)

	require.Equal(t, a.Eigenvalues, b.Eigenvalues)
	require.Equal(t, a.Iterations, b.Iterations)
}

// TestComplexHermitian runs the solver on a genuinely complex Hermitian
// matrix and checks against its analytic spectrum.
func TestComplexHermitian(t *testing.T) {
	t.Parallel()

	// [[1, i], [-i, 1]] has eigenvalues 0 and 2.
	m, err := hamiltonian.New(2, []hamiltonian.Triplet{
		{Row: 0, Col: 0, Val: 1},
		{Row: 0, Col: 1, Val: complex(0, 1)},
		{Row: 1, Col: 0, Val: complex(0, -1)},
		{Row: 1, Col: 1, Val: 1},
	})
	require.NoError(t, err)
	require.True(t, m.IsHermitian(1e-14))

	opts := DefaultOptions()
	opts.WantVectors = true
	sp, err := Solve(context.Background(), m, opts)
	require.NoError(t, err)
	require.InDelta(t, 0, sp.Eigenvalues[0], 1e-9)

	// Eigenvector check up to phase: H·x = λ·x.
	x := sp.Vectors[0]
	hx := make([]complex128, 2)
	require.NoError(t, m.MulVec(hx, x))
	for i := range hx {
		require.Less(t, cmplx.Abs(hx[i]), 1e-7)
	}
}
