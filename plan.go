package algolanczos

import (
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-lanczos/hamiltonian"
)

// hermTol bounds the allowed asymmetry of input matrices.
const hermTol = 1e-12

// Plan is a Lanczos solver bound to one Hamiltonian. All validation
// happens at creation, and the recurrence scratch is allocated once;
// Run performs no checks beyond context cancellation.
//
// A Plan is not safe for concurrent use, but independent Plans are.
// Run may be called repeatedly; each call restarts from the seeded
// start vector.
type Plan struct {
	m       *hamiltonian.Matrix
	opts    Options
	maxIter int
	log     zerolog.Logger

	w     []complex128
	basis [][]complex128
}

// NewPlan validates the matrix and options and prepares a solver.
//
// The matrix must be Hermitian. Options must satisfy Tolerance > 0,
// 1 <= NumEig < Dim (NumEig == 1 for the trivial 1×1 case) and
// MaxIter > NumEig, so the budget can always produce the requested
// Ritz values. WantVectors implies Reorthogonalize.
func NewPlan(m *hamiltonian.Matrix, opts Options) (*Plan, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	n := m.Dim()
	switch {
	case opts.MaxIter < 1, opts.Tolerance <= 0:
		return nil, ErrInvalidOptions
	case opts.NumEig < 1, opts.MaxIter <= opts.NumEig:
		return nil, ErrInvalidOptions
	case n == 1 && opts.NumEig != 1, n > 1 && opts.NumEig >= n:
		return nil, ErrInvalidOptions
	}
	if !m.IsHermitian(hermTol) {
		return nil, ErrNotHermitian
	}

	if opts.WantVectors {
		opts.Reorthogonalize = true
	}

	maxIter := opts.MaxIter
	if maxIter > n {
		maxIter = n
	}

	return &Plan{
		m:       m,
		opts:    opts,
		maxIter: maxIter,
		log:     opts.logger(),
		w:       make([]complex128, n),
		basis:   make([][]complex128, 0, maxIter+1),
	}, nil
}

// Dim returns the dimension of the bound matrix.
func (p *Plan) Dim() int {
	return p.m.Dim()
}

// NumEig returns the number of eigenvalues the plan converges.
func (p *Plan) NumEig() int {
	return p.opts.NumEig
}
