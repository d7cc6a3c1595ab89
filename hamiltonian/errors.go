package hamiltonian

import "errors"

// Sentinel errors returned by matrix construction and multiplication.
var (
	// ErrInvalidDimension is returned when the requested dimension is not positive.
	ErrInvalidDimension = errors.New("hamiltonian: invalid matrix dimension")

	// ErrIndexOutOfRange is returned when a triplet references a row or
	// column outside [0, dim).
	ErrIndexOutOfRange = errors.New("hamiltonian: triplet index out of range")

	// ErrDimensionMismatch is returned when a vector length does not match
	// the matrix dimension.
	ErrDimensionMismatch = errors.New("hamiltonian: vector length mismatch")

	// ErrAliasedSlices is returned when dst and src share backing storage
	// in a call that requires distinct slices.
	ErrAliasedSlices = errors.New("hamiltonian: dst and src must not alias")

	// ErrTooManySites is returned when a spin-chain builder is asked for a
	// chain whose Hilbert space does not fit in an int.
	ErrTooManySites = errors.New("hamiltonian: too many sites")
)
