package device

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	algolanczos "github.com/cwbudde/algo-lanczos"
	"github.com/cwbudde/algo-lanczos/hamiltonian"
	"github.com/cwbudde/algo-lanczos/internal/tridiag"
)

const (
	qlMaxIter    = 30
	breakdownEps = 1e-14
	maxRestarts  = 3
	hermTol      = 1e-12
)

// NewKernelSolver builds the generic Lanczos recurrence on top of a
// context's Buffers and Kernels: the matrix-vector product, projections
// and norms all run through the backend's primitive ops, and only the
// small tridiagonal problem is solved on the host. NewPlan falls back
// to it whenever the backend does not provide a fused solver of its
// own.
func NewKernelSolver(c Context, m *hamiltonian.Matrix, opts Options) (SolverImpl, error) {
	if c == nil {
		return nil, ErrNoBackend
	}
	if m == nil {
		return nil, algolanczos.ErrNilMatrix
	}
	n := m.Dim()
	switch {
	case opts.MaxIter < 1, opts.Tolerance <= 0:
		return nil, algolanczos.ErrInvalidOptions
	case opts.NumEig < 1, opts.MaxIter <= opts.NumEig:
		return nil, algolanczos.ErrInvalidOptions
	case n == 1 && opts.NumEig != 1, n > 1 && opts.NumEig >= n:
		return nil, algolanczos.ErrInvalidOptions
	}
	if !m.IsHermitian(hermTol) {
		return nil, algolanczos.ErrNotHermitian
	}

	if opts.WantVectors {
		opts.Reorthogonalize = true
	}

	maxIter := opts.MaxIter
	if maxIter > n {
		maxIter = n
	}

	return &kernelSolver{c: c, m: m, opts: opts, maxIter: maxIter}, nil
}

type kernelSolver struct {
	c       Context
	m       *hamiltonian.Matrix
	opts    Options
	maxIter int

	bufs []Buffer
}

func (s *kernelSolver) Dim() int { return s.m.Dim() }

// newBuffer allocates a zeroed device buffer and tracks it for Close.
func (s *kernelSolver) newBuffer(n int) (Buffer, error) {
	b, err := s.c.NewBuffer(n)
	if err != nil {
		return nil, err
	}
	s.bufs = append(s.bufs, b)
	return b, nil
}

// Run executes the recurrence, mirroring the host solver iteration for
// iteration so both paths converge on the same spectra for the same
// seed.
func (s *kernelSolver) Run(ctx context.Context) (*Spectrum, error) {
	n := s.m.Dim()
	if n == 1 {
		sp := &Spectrum{
			Eigenvalues: []float64{real(s.m.At(0, 0))},
			Residuals:   []float64{0},
			Converged:   true,
		}
		if s.opts.WantVectors {
			sp.Vectors = [][]complex128{{1}}
		}
		return sp, nil
	}

	ops := s.c.Kernels()
	rnd := rand.New(rand.NewSource(s.opts.Seed))

	v0, err := s.randomUnitBuffer(ops, rnd, n)
	if err != nil {
		return nil, err
	}
	basis := []Buffer{v0}

	w, err := s.newBuffer(n)
	if err != nil {
		return nil, err
	}

	alpha := make([]float64, 0, s.maxIter)
	beta := make([]float64, 0, s.maxIter)
	var prevRitz []float64
	scale := 0.0
	restarts := 0

	for len(alpha) < s.maxIter {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		j := len(alpha)
		vj := basis[j]

		if err := ops.SpMV(w, vj, s.m); err != nil {
			return nil, err
		}
		dot, err := ops.Dotc(vj, w)
		if err != nil {
			return nil, err
		}
		a := real(dot)
		alpha = append(alpha, a)
		if err := ops.Axpy(complex(-a, 0), vj, w); err != nil {
			return nil, err
		}
		if j > 0 {
			if err := ops.Axpy(complex(-beta[j-1], 0), basis[j-1], w); err != nil {
				return nil, err
			}
		}
		if s.opts.Reorthogonalize {
			if err := orthogonalizeBuffer(ops, w, basis); err != nil {
				return nil, err
			}
		}
		b, err := ops.Nrm2(w)
		if err != nil {
			return nil, err
		}

		if math.Abs(a) > scale {
			scale = math.Abs(a)
		}
		if b > scale {
			scale = b
		}

		k := j + 1
		if k >= s.opts.NumEig {
			ritz, err := lowestRitz(alpha, beta)
			if err != nil {
				return nil, err
			}
			if settled(ritz, prevRitz, s.opts.NumEig, s.opts.Tolerance) {
				return s.finish(ops, alpha, beta, basis, b, true)
			}
			prevRitz = ritz
		}

		if b <= breakdownEps*math.Max(scale, 1) {
			if k >= s.opts.NumEig {
				return s.finish(ops, alpha, beta, basis, b, true)
			}
			if restarts == maxRestarts {
				return nil, algolanczos.ErrBreakdown
			}
			restarts++
			nv, err := s.restartBuffer(ops, rnd, basis)
			if err != nil {
				return nil, err
			}
			beta = append(beta, 0)
			basis = append(basis, nv)
			continue
		}

		beta = append(beta, b)
		vnext, err := s.newBuffer(n)
		if err != nil {
			return nil, err
		}
		// Buffers allocate zeroed, so axpy with unit weight is a copy.
		if err := ops.Axpy(1, w, vnext); err != nil {
			return nil, err
		}
		if err := ops.Normalize(vnext, b); err != nil {
			return nil, err
		}
		basis = append(basis, vnext)
	}

	b := 0.0
	if len(beta) >= len(alpha) && len(alpha) > 0 {
		b = beta[len(alpha)-1]
	}
	sp, err := s.finish(ops, alpha, beta, basis, b, false)
	if err != nil {
		return nil, err
	}
	return sp, algolanczos.ErrNotConverged
}

func (s *kernelSolver) finish(ops Kernels, alpha, beta []float64, basis []Buffer, b float64, converged bool) (*Spectrum, error) {
	k := len(alpha)
	d := append([]float64(nil), alpha...)
	e := make([]float64, k)
	copy(e, beta[:k-1])

	z := tridiag.Identity(k)
	if _, err := tridiag.QLImplicit(d, e, z, qlMaxIter); err != nil {
		return nil, fmt.Errorf("failed to diagonalize tridiagonal matrix: %w", err)
	}

	ne := s.opts.NumEig
	if ne > k {
		ne = k
	}

	sp := &Spectrum{
		Eigenvalues: d[:ne:ne],
		Residuals:   make([]float64, ne),
		Iterations:  k,
		Converged:   converged,
	}
	for i := 0; i < ne; i++ {
		sp.Residuals[i] = math.Abs(b * z[(k-1)*k+i])
	}

	if s.opts.WantVectors {
		n := s.m.Dim()
		sp.Vectors = make([][]complex128, ne)
		for i := 0; i < ne; i++ {
			x, err := s.newBuffer(n)
			if err != nil {
				return nil, err
			}
			for j := 0; j < k; j++ {
				if err := ops.Axpy(complex(z[j*k+i], 0), basis[j], x); err != nil {
					return nil, err
				}
			}
			norm, err := ops.Nrm2(x)
			if err != nil {
				return nil, err
			}
			if err := ops.Normalize(x, norm); err != nil {
				return nil, err
			}
			host := make([]complex128, n)
			if err := x.Download(host); err != nil {
				return nil, err
			}
			sp.Vectors[i] = host
		}
	}

	return sp, nil
}

func (s *kernelSolver) Close() error {
	var firstErr error
	for _, b := range s.bufs {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.bufs = nil
	return firstErr
}

// randomUnitBuffer draws a complex Gaussian vector on the host, uploads
// it and normalizes it on the device.
func (s *kernelSolver) randomUnitBuffer(ops Kernels, rnd *rand.Rand, n int) (Buffer, error) {
	buf, err := s.newBuffer(n)
	if err != nil {
		return nil, err
	}
	host := make([]complex128, n)
	for {
		for i := range host {
			host[i] = complex(rnd.NormFloat64(), rnd.NormFloat64())
		}
		if err := buf.Upload(host); err != nil {
			return nil, err
		}
		norm, err := ops.Nrm2(buf)
		if err != nil {
			return nil, err
		}
		if norm > 0 {
			if err := ops.Normalize(buf, norm); err != nil {
				return nil, err
			}
			return buf, nil
		}
	}
}

// restartBuffer draws a fresh unit vector orthogonal to the basis, for
// continuing past a closed Krylov subspace.
func (s *kernelSolver) restartBuffer(ops Kernels, rnd *rand.Rand, basis []Buffer) (Buffer, error) {
	n := s.m.Dim()
	for attempt := 0; attempt < maxRestarts; attempt++ {
		v, err := s.randomUnitBuffer(ops, rnd, n)
		if err != nil {
			return nil, err
		}
		if err := orthogonalizeBuffer(ops, v, basis); err != nil {
			return nil, err
		}
		norm, err := ops.Nrm2(v)
		if err != nil {
			return nil, err
		}
		if norm > 1e-7 {
			if err := ops.Normalize(v, norm); err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	return nil, algolanczos.ErrBreakdown
}

// orthogonalizeBuffer removes the projection of w onto every basis
// vector (one pass of modified Gram-Schmidt through the device ops).
func orthogonalizeBuffer(ops Kernels, w Buffer, basis []Buffer) error {
	for _, u := range basis {
		d, err := ops.Dotc(u, w)
		if err != nil {
			return err
		}
		if err := ops.Axpy(-d, u, w); err != nil {
			return err
		}
	}
	return nil
}

// lowestRitz returns the ascending eigenvalues of the current
// tridiagonal matrix.
func lowestRitz(alpha, beta []float64) ([]float64, error) {
	k := len(alpha)
	d := append([]float64(nil), alpha...)
	e := make([]float64, k)
	copy(e, beta[:k-1])
	if _, err := tridiag.QLImplicit(d, e, nil, qlMaxIter); err != nil {
		return nil, fmt.Errorf("failed to compute Ritz values: %w", err)
	}
	return d, nil
}

// settled reports whether the lowest want Ritz values moved by less
// than tol since the previous iteration.
func settled(ritz, prev []float64, want int, tol float64) bool {
	if len(prev) < want || len(ritz) < want {
		return false
	}
	for i := 0; i < want; i++ {
		if math.Abs(ritz[i]-prev[i]) >= tol {
			return false
		}
	}
	return true
}
