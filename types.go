package algolanczos

// Spectrum is the result of a Lanczos solve.
type Spectrum struct {
	// Eigenvalues holds the NumEig lowest converged Ritz values in
	// ascending order (fewer if the Krylov space closed early).
	Eigenvalues []float64

	// Vectors holds the Ritz vector for each eigenvalue when requested
	// via Options.WantVectors, nil otherwise.
	Vectors [][]complex128

	// Residuals holds the a-posteriori residual bound ‖H·x − λ·x‖ for
	// each reported eigenvalue.
	Residuals []float64

	// Iterations is the Krylov dimension reached.
	Iterations int

	// Converged reports whether every requested eigenvalue met the
	// tolerance before the iteration budget ran out.
	Converged bool
}
