package algolanczos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	v := []complex128{3, 4}
	require.NoError(t, normalize(v, nrm2(v)))
	require.InDelta(t, 1, nrm2(v), 1e-15)
	require.InDelta(t, 0.6, real(v[0]), 1e-15)
	require.InDelta(t, 0.8, real(v[1]), 1e-15)
}

func TestNormalizeRejectsBadNorms(t *testing.T) {
	t.Parallel()

	v := []complex128{1, 2}
	require.ErrorIs(t, normalize(v, 0), ErrZeroNorm)
	require.ErrorIs(t, normalize(v, -1), ErrZeroNorm)
	require.ErrorIs(t, normalize(v, math.NaN()), ErrZeroNorm)
	require.ErrorIs(t, normalize(v, math.Inf(1)), ErrZeroNorm)
}

func TestDotcConjugatesFirstArgument(t *testing.T) {
	t.Parallel()

	x := []complex128{complex(0, 1)}
	y := []complex128{complex(0, 1)}
	// ⟨x, x⟩ = |x|² must be real and positive.
	require.Equal(t, complex128(1), dotc(x, y))
}

func TestAxpyNrm2(t *testing.T) {
	t.Parallel()

	x := []complex128{1, complex(0, 1)}
	y := []complex128{1, 1}
	axpy(complex(2, 0), x, y)
	require.Equal(t, complex128(3), y[0])
	require.Equal(t, complex(1.0, 2.0), y[1])

	require.InDelta(t, math.Sqrt(9+1+4), nrm2(y), 1e-15)
}
