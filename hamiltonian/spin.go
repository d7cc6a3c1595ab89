package hamiltonian

import "math/bits"

// Spin-1/2 chain builders. Basis states are bitmasks over sites: bit i
// clear means spin up (+1/2) at site i, bit i set means spin down (-1/2).
// All couplings are real, so the resulting matrices are real symmetric.

const maxSites = 30

// HeisenbergChain builds the XYZ Heisenberg Hamiltonian
//
//	H = Σ_bonds jx·SˣSˣ + jy·SʸSʸ + jz·SᶻSᶻ
//
// on a chain of spin-1/2 sites. With periodic set, the last site couples
// back to the first. The Hilbert space dimension is 2^sites.
func HeisenbergChain(sites int, jx, jy, jz float64, periodic bool) (*Matrix, error) {
	return spinChain(sites, periodic, func(t []Triplet, dim, maskA, maskB int) []Triplet {
		for s := 0; s < dim; s++ {
			aDown := s&maskA != 0
			bDown := s&maskB != 0

			// SᶻSᶻ is diagonal: +1/4 for aligned spins, -1/4 otherwise.
			szsz := 0.25
			if aDown != bDown {
				szsz = -0.25
			}
			if jz != 0 {
				t = append(t, Triplet{Row: s, Col: s, Val: complex(jz*szsz, 0)})
			}

			// SˣSˣ + SʸSʸ exchanges anti-aligned spins, SˣSˣ - SʸSʸ
			// flips aligned pairs. Both map s to s with the two bits
			// toggled.
			flipped := s ^ maskA ^ maskB
			var amp float64
			if aDown != bDown {
				amp = (jx + jy) / 4
			} else {
				amp = (jx - jy) / 4
			}
			if amp != 0 {
				t = append(t, Triplet{Row: flipped, Col: s, Val: complex(amp, 0)})
			}
		}
		return t
	})
}

// TransverseIsing builds the transverse-field Ising Hamiltonian
//
//	H = -j·Σ_bonds SᶻSᶻ - h·Σ_sites Sˣ
//
// on a chain of spin-1/2 sites.
func TransverseIsing(sites int, j, h float64, periodic bool) (*Matrix, error) {
	m, err := spinChain(sites, periodic, func(t []Triplet, dim, maskA, maskB int) []Triplet {
		if j == 0 {
			return t
		}
		for s := 0; s < dim; s++ {
			szsz := 0.25
			if (s&maskA != 0) != (s&maskB != 0) {
				szsz = -0.25
			}
			t = append(t, Triplet{Row: s, Col: s, Val: complex(-j*szsz, 0)})
		}
		return t
	})
	if err != nil || h == 0 {
		return m, err
	}

	// Field term: Sˣ at site i flips bit i with amplitude 1/2.
	dim := 1 << sites
	t := make([]Triplet, 0, sites*dim)
	for i := 0; i < sites; i++ {
		mask := 1 << i
		for s := 0; s < dim; s++ {
			t = append(t, Triplet{Row: s ^ mask, Col: s, Val: complex(-h/2, 0)})
		}
	}
	field, err := New(dim, t)
	if err != nil {
		return nil, err
	}
	return add(m, field)
}

// spinChain iterates bonds of a chain and delegates per-bond terms to fill.
func spinChain(sites int, periodic bool, fill func(t []Triplet, dim, maskA, maskB int) []Triplet) (*Matrix, error) {
	if sites < 1 {
		return nil, ErrInvalidDimension
	}
	if sites > maxSites || bits.UintSize == 32 && sites > 28 {
		return nil, ErrTooManySites
	}

	dim := 1 << sites
	bonds := sites - 1
	if periodic && sites > 2 {
		bonds = sites
	}

	var t []Triplet
	for b := 0; b < bonds; b++ {
		t = fill(t, dim, 1<<b, 1<<((b+1)%sites))
	}
	return New(dim, t)
}

// add returns the entrywise sum of two matrices of equal dimension.
func add(a, b *Matrix) (*Matrix, error) {
	if a.dim != b.dim {
		return nil, ErrDimensionMismatch
	}
	t := make([]Triplet, 0, a.NNZ()+b.NNZ())
	for _, m := range []*Matrix{a, b} {
		for i := 0; i < m.dim; i++ {
			for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
				t = append(t, Triplet{Row: i, Col: m.colInd[k], Val: m.vals[k]})
			}
		}
	}
	return New(a.dim, t)
}
