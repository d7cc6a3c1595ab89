package algolanczos

import "errors"

// Sentinel errors returned by solver operations.
var (
	// ErrNilMatrix is returned when a nil Hamiltonian is passed to NewPlan
	// or SolveBatch.
	ErrNilMatrix = errors.New("algolanczos: nil matrix")

	// ErrNotHermitian is returned when the input matrix is not Hermitian
	// to within the plan tolerance.
	ErrNotHermitian = errors.New("algolanczos: matrix is not Hermitian")

	// ErrInvalidOptions is returned when Options fields are out of range,
	// e.g. NumEig < 1, NumEig >= Dim, or a non-positive Tolerance.
	ErrInvalidOptions = errors.New("algolanczos: invalid options")

	// ErrZeroNorm is returned when a vector with zero (or non-finite) norm
	// would be normalized.
	ErrZeroNorm = errors.New("algolanczos: cannot normalize zero-norm vector")

	// ErrNotConverged is returned by Run when the requested eigenvalues did
	// not settle within the iteration budget. The partial Spectrum is still
	// returned alongside it.
	ErrNotConverged = errors.New("algolanczos: not converged within iteration budget")

	// ErrNilSpectrum is returned when a nil Spectrum is written or exported.
	ErrNilSpectrum = errors.New("algolanczos: nil spectrum")

	// ErrBreakdown is returned when the Krylov space closes before the
	// requested number of eigenvalues is available and no restart vector
	// can be found.
	ErrBreakdown = errors.New("algolanczos: Krylov breakdown")
)
