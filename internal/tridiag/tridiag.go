// Package tridiag computes eigenvalues and eigenvectors of real symmetric
// tridiagonal matrices with the implicit-shift QL method.
package tridiag

import (
	"errors"
	"math"
)

// ErrTooManyIterations is returned when an eigenvalue fails to converge
// within the sweep budget.
var ErrTooManyIterations = errors.New("tridiag: too many QL iterations")

// eps is the distance from 1.0 to the next larger float64.
const eps = 0x1p-52

// Pythag returns sqrt(a²+b²) without destructive overflow or underflow.
func Pythag(a, b float64) float64 {
	absa := math.Abs(a)
	absb := math.Abs(b)
	if absa > absb {
		t := absb / absa
		return absa * math.Sqrt(1+t*t)
	}
	if absb == 0 {
		return 0
	}
	t := absa / absb
	return absb * math.Sqrt(1+t*t)
}

// Identity returns a row-major n×n identity matrix, suitable as the z
// argument of QLImplicit.
func Identity(n int) []float64 {
	z := make([]float64, n*n)
	for i := 0; i < n; i++ {
		z[i*n+i] = 1
	}
	return z
}

// QLImplicit diagonalizes a symmetric tridiagonal matrix in place using
// QL sweeps with implicit Wilkinson shifts.
//
// On entry d holds the n diagonal elements and e the subdiagonal in
// e[0:n-1]; e must have length n, its last element is scratch. On return
// d holds the eigenvalues in ascending order and e is destroyed.
//
// z, if non-nil, must be a row-major n×n matrix; the applied rotations
// accumulate into it, so passing Identity(n) yields the eigenvectors of
// the tridiagonal matrix as columns of z, ordered like d. Passing the
// orthogonal matrix from a prior reduction yields eigenvectors of the
// original matrix.
//
// maxIter bounds the sweeps spent on any single eigenvalue. The returned
// count is the total number of sweeps performed, and is valid even when
// ErrTooManyIterations is returned.
func QLImplicit(d, e, z []float64, maxIter int) (int, error) {
	n := len(d)
	switch {
	case len(e) < n:
		panic("tridiag: e shorter than d")
	case z != nil && len(z) < n*n:
		panic("tridiag: z shorter than n*n")
	}
	if n == 0 {
		return 0, nil
	}
	e[n-1] = 0

	sweeps := 0
	for l := 0; l < n; l++ {
		iter := 0
		for {
			// Look for a negligible subdiagonal element to split the matrix.
			m := l
			for m < n-1 {
				dd := math.Abs(d[m]) + math.Abs(d[m+1])
				if math.Abs(e[m]) <= eps*dd {
					break
				}
				m++
			}
			if m == l {
				break
			}
			if iter == maxIter {
				return sweeps, ErrTooManyIterations
			}
			iter++
			sweeps++

			// Wilkinson shift from the leading 2×2.
			g := (d[l+1] - d[l]) / (2 * e[l])
			r := Pythag(g, 1)
			g = d[m] - d[l] + e[l]/(g+math.Copysign(r, g))

			s, c := 1.0, 1.0
			p := 0.0
			deflated := false
			for i := m - 1; i >= l; i-- {
				f := s * e[i]
				b := c * e[i]
				r = Pythag(f, g)
				e[i+1] = r
				if r == 0 {
					// Deflate: an off-diagonal underflowed mid-sweep.
					d[i+1] -= p
					e[m] = 0
					deflated = true
					break
				}
				s = f / r
				c = g / r
				g = d[i+1] - p
				r = (d[i]-g)*s + 2*c*b
				p = s * r
				d[i+1] = g + p
				g = c*r - b

				if z != nil {
					for k := 0; k < n; k++ {
						f := z[k*n+i+1]
						z[k*n+i+1] = s*z[k*n+i] + c*f
						z[k*n+i] = c*z[k*n+i] - s*f
					}
				}
			}
			if deflated {
				continue
			}
			d[l] -= p
			e[l] = g
			e[m] = 0
		}
	}

	sortAscending(d, z, n)
	return sweeps, nil
}

// sortAscending orders eigenvalues ascending, permuting eigenvector
// columns to match.
func sortAscending(d, z []float64, n int) {
	for i := 0; i < n-1; i++ {
		k := i
		p := d[i]
		for j := i + 1; j < n; j++ {
			if d[j] < p {
				k = j
				p = d[j]
			}
		}
		if k == i {
			continue
		}
		d[k] = d[i]
		d[i] = p
		if z != nil {
			for r := 0; r < n; r++ {
				z[r*n+i], z[r*n+k] = z[r*n+k], z[r*n+i]
			}
		}
	}
}
