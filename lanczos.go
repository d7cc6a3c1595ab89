package algolanczos

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-lanczos/hamiltonian"
	"github.com/cwbudde/algo-lanczos/internal/tridiag"
)

const (
	// qlMaxIter bounds implicit-shift sweeps per eigenvalue (LAPACK's
	// budget for dsteqr).
	qlMaxIter = 30

	// breakdownEps scales the happy-breakdown threshold for the
	// subdiagonal norm, relative to the largest recurrence coefficient.
	breakdownEps = 1e-14

	// maxRestarts bounds how often the iteration may re-seed after the
	// Krylov space closes short of NumEig.
	maxRestarts = 3
)

// Solve diagonalizes m in one shot: NewPlan followed by Run.
func Solve(ctx context.Context, m *hamiltonian.Matrix, opts Options) (*Spectrum, error) {
	p, err := NewPlan(m, opts)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

// Run performs the Lanczos iteration.
//
// Starting from a seeded random unit vector, each iteration applies the
// Hamiltonian, projects out the two previous basis vectors (three-term
// recurrence) and normalizes the remainder into the next basis vector.
// The recurrence coefficients form a symmetric tridiagonal matrix whose
// lowest Ritz values are tracked each iteration; the solve stops once
// the NumEig lowest each move by less than Tolerance, or exactly when
// the Krylov space closes (happy breakdown).
//
// On an exhausted iteration budget Run returns the partial Spectrum
// together with ErrNotConverged.
func (p *Plan) Run(ctx context.Context) (*Spectrum, error) {
	n := p.m.Dim()
	if n == 1 {
		sp := &Spectrum{
			Eigenvalues: []float64{real(p.m.At(0, 0))},
			Residuals:   []float64{0},
			Iterations:  0,
			Converged:   true,
		}
		if p.opts.WantVectors {
			sp.Vectors = [][]complex128{{1}}
		}
		return sp, nil
	}

	rnd := rand.New(rand.NewSource(p.opts.Seed))

	basis := p.basis[:0]
	basis = append(basis, randomUnitVector(rnd, n))

	w := p.w
	alpha := make([]float64, 0, p.maxIter)
	beta := make([]float64, 0, p.maxIter)
	var prevRitz []float64
	scale := 0.0
	restarts := 0

	for len(alpha) < p.maxIter {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		j := len(alpha)
		vj := basis[j]

		if err := p.m.MulVec(w, vj); err != nil {
			return nil, err
		}
		a := real(dotc(vj, w))
		alpha = append(alpha, a)
		axpy(complex(-a, 0), vj, w)
		if j > 0 {
			axpy(complex(-beta[j-1], 0), basis[j-1], w)
		}
		if p.opts.Reorthogonalize {
			orthogonalize(w, basis)
		}
		b := nrm2(w)

		if math.Abs(a) > scale {
			scale = math.Abs(a)
		}
		if b > scale {
			scale = b
		}

		k := j + 1
		if k >= p.opts.NumEig {
			ritz, err := ritzValues(alpha, beta)
			if err != nil {
				return nil, err
			}
			p.log.Debug().
				Int("iter", k).
				Float64("beta", b).
				Float64("ritz0", ritz[0]).
				Msg("lanczos sweep")
			if settled(ritz, prevRitz, p.opts.NumEig, p.opts.Tolerance) {
				return p.finish(alpha, beta, basis, b, true)
			}
			prevRitz = ritz
		}

		if b <= breakdownEps*math.Max(scale, 1) {
			// The Krylov space is invariant: the tridiagonal spectrum
			// is exact.
			if k >= p.opts.NumEig {
				return p.finish(alpha, beta, basis, b, true)
			}
			if restarts == maxRestarts {
				return nil, ErrBreakdown
			}
			restarts++
			nv, err := restartVector(rnd, basis)
			if err != nil {
				return nil, err
			}
			p.log.Debug().Int("iter", k).Msg("krylov space closed, re-seeding")
			beta = append(beta, 0)
			basis = append(basis, nv)
			continue
		}

		beta = append(beta, b)
		vnext := make([]complex128, n)
		copy(vnext, w)
		if err := normalize(vnext, b); err != nil {
			return nil, err
		}
		basis = append(basis, vnext)
	}

	sp, err := p.finish(alpha, beta, basis, lastBeta(beta, len(alpha)), false)
	if err != nil {
		return nil, err
	}
	return sp, ErrNotConverged
}

// finish diagonalizes the accumulated tridiagonal matrix and assembles
// the Spectrum. b is the final (unappended) subdiagonal norm used for
// residual bounds.
func (p *Plan) finish(alpha, beta []float64, basis [][]complex128, b float64, converged bool) (*Spectrum, error) {
	k := len(alpha)
	d := append([]float64(nil), alpha...)
	e := make([]float64, k)
	copy(e, beta[:k-1])

	z := tridiag.Identity(k)
	if _, err := tridiag.QLImplicit(d, e, z, qlMaxIter); err != nil {
		return nil, fmt.Errorf("failed to diagonalize tridiagonal matrix: %w", err)
	}

	ne := p.opts.NumEig
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
		// Standard bound: the residual of Ritz pair i is |β_k·z_{k-1,i}|.
		sp.Residuals[i] = math.Abs(b * z[(k-1)*k+i])
	}

	if p.opts.WantVectors {
		n := p.m.Dim()
		sp.Vectors = make([][]complex128, ne)
		for i := 0; i < ne; i++ {
			x := make([]complex128, n)
			for j := 0; j < k; j++ {
				axpy(complex(z[j*k+i], 0), basis[j], x)
			}
			if err := normalize(x, nrm2(x)); err != nil {
				return nil, err
			}
			sp.Vectors[i] = x
		}
	}

	return sp, nil
}

// ritzValues returns the ascending eigenvalues of the current
// tridiagonal matrix without disturbing the recurrence state.
func ritzValues(alpha, beta []float64) ([]float64, error) {
	k := len(alpha)
	d := append([]float64(nil), alpha...)
	e := make([]float64, k)
	copy(e, beta[:k-1])
	if _, err := tridiag.QLImplicit(d, e, nil, qlMaxIter); err != nil {
		return nil, fmt.Errorf("failed to compute Ritz values: %w", err)
	}
	return d, nil
}

// settled reports whether the lowest want Ritz values moved by less than
// tol since the previous iteration.
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

// orthogonalize removes the projection of w onto every basis vector
// (one pass of modified Gram-Schmidt).
func orthogonalize(w []complex128, basis [][]complex128) {
	for _, u := range basis {
		axpy(-dotc(u, w), u, w)
	}
}

// randomUnitVector draws a complex Gaussian vector and normalizes it.
func randomUnitVector(rnd *rand.Rand, n int) []complex128 {
	v := make([]complex128, n)
	for {
		for i := range v {
			v[i] = complex(rnd.NormFloat64(), rnd.NormFloat64())
		}
		if norm := nrm2(v); norm > 0 {
			_ = normalize(v, norm)
			return v
		}
	}
}

// restartVector draws a fresh unit vector orthogonal to the basis, for
// continuing past a closed Krylov subspace.
func restartVector(rnd *rand.Rand, basis [][]complex128) ([]complex128, error) {
	n := len(basis[0])
	for attempt := 0; attempt < maxRestarts; attempt++ {
		v := randomUnitVector(rnd, n)
		orthogonalize(v, basis)
		if norm := nrm2(v); norm > 1e-7 {
			if err := normalize(v, norm); err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	return nil, ErrBreakdown
}

// lastBeta returns the subdiagonal entry following iteration k-1, zero
// when the recurrence stopped before producing it.
func lastBeta(beta []float64, k int) float64 {
	if len(beta) >= k && k > 0 {
		return beta[k-1]
	}
	return 0
}
