package hamiltonian

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Triplet is a single matrix entry in coordinate form.
type Triplet struct {
	Row, Col int
	Val      complex128
}

// Matrix is a sparse square matrix in compressed sparse row form.
// Entries within a row are sorted by column and contain no duplicates.
//
// The solver expects Hermitian matrices; construction does not enforce
// this, use IsHermitian to verify.
type Matrix struct {
	dim    int
	rowPtr []int
	colInd []int
	vals   []complex128
}

// New builds a Matrix from coordinate triplets. Duplicate entries are
// summed, entries that sum to exactly zero are dropped.
func New(dim int, triplets []Triplet) (*Matrix, error) {
	if dim < 1 {
		return nil, ErrInvalidDimension
	}
	for _, t := range triplets {
		if t.Row < 0 || t.Row >= dim || t.Col < 0 || t.Col >= dim {
			return nil, ErrIndexOutOfRange
		}
	}

	sorted := make([]Triplet, len(triplets))
	copy(sorted, triplets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	m := &Matrix{
		dim:    dim,
		rowPtr: make([]int, dim+1),
	}

	for i := 0; i < len(sorted); {
		j := i + 1
		sum := sorted[i].Val
		for j < len(sorted) && sorted[j].Row == sorted[i].Row && sorted[j].Col == sorted[i].Col {
			sum += sorted[j].Val
			j++
		}
		if sum != 0 {
			m.colInd = append(m.colInd, sorted[i].Col)
			m.vals = append(m.vals, sum)
			m.rowPtr[sorted[i].Row+1]++
		}
		i = j
	}

	for r := 0; r < dim; r++ {
		m.rowPtr[r+1] += m.rowPtr[r]
	}

	return m, nil
}

// Dim returns the matrix dimension.
func (m *Matrix) Dim() int {
	return m.dim
}

// NNZ returns the number of stored (nonzero) entries.
func (m *Matrix) NNZ() int {
	return len(m.vals)
}

// MulVec computes dst = M·src. dst and src must both have length Dim and
// must not alias.
func (m *Matrix) MulVec(dst, src []complex128) error {
	if len(dst) != m.dim || len(src) != m.dim {
		return ErrDimensionMismatch
	}
	if &dst[0] == &src[0] {
		return ErrAliasedSlices
	}
	for i := 0; i < m.dim; i++ {
		var sum complex128
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			sum += m.vals[k] * src[m.colInd[k]]
		}
		dst[i] = sum
	}
	return nil
}

// At returns the entry at (i, j), or zero if it is not stored.
// Row and column must be in [0, Dim).
func (m *Matrix) At(i, j int) complex128 {
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	k := lo + sort.SearchInts(m.colInd[lo:hi], j)
	if k < hi && m.colInd[k] == j {
		return m.vals[k]
	}
	return 0
}

// IsHermitian reports whether the matrix equals its conjugate transpose
// to within tol on each entry.
func (m *Matrix) IsHermitian(tol float64) bool {
	for i := 0; i < m.dim; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			j := m.colInd[k]
			if cmplx.Abs(m.vals[k]-cmplx.Conj(m.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

// Dense returns a dense copy of the matrix.
func (m *Matrix) Dense() *mat.CDense {
	d := mat.NewCDense(m.dim, m.dim, nil)
	for i := 0; i < m.dim; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			d.Set(i, m.colInd[k], m.vals[k])
		}
	}
	return d
}

// RealSym returns a dense real-symmetric copy of the matrix when every
// entry has negligible imaginary part, which holds for all spin-chain
// builders in this package. The second return value is false when the
// matrix has genuinely complex entries.
func (m *Matrix) RealSym() (*mat.SymDense, bool) {
	const imagTol = 1e-14
	s := mat.NewSymDense(m.dim, nil)
	for i := 0; i < m.dim; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			j := m.colInd[k]
			if math.Abs(imag(m.vals[k])) > imagTol {
				return nil, false
			}
			if j >= i {
				s.SetSym(i, j, real(m.vals[k]))
			}
		}
	}
	return s, true
}
