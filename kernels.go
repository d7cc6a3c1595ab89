package algolanczos

import (
	"math"

	"gonum.org/v1/gonum/blas/cblas128"
)

// Vector kernels shared by the iteration. These are thin wrappers over
// cblas128 so a future assembly or device path can swap in underneath.

func vec(v []complex128) cblas128.Vector {
	return cblas128.Vector{N: len(v), Inc: 1, Data: v}
}

// normalize scales v by 1/norm.
func normalize(v []complex128, norm float64) error {
	if !(norm > 0) || math.IsInf(norm, 1) {
		return ErrZeroNorm
	}
	cblas128.Dscal(1/norm, vec(v))
	return nil
}

// dotc returns ⟨x, y⟩ with x conjugated.
func dotc(x, y []complex128) complex128 {
	return cblas128.Dotc(vec(x), vec(y))
}

// axpy computes y += alpha·x.
func axpy(alpha complex128, x, y []complex128) {
	cblas128.Axpy(alpha, vec(x), vec(y))
}

// nrm2 returns the Euclidean norm of x.
func nrm2(x []complex128) float64 {
	return cblas128.Nrm2(vec(x))
}
