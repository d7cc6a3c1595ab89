// Package algolanczos finds extremal eigenvalues of large sparse
// Hermitian matrices with the Lanczos iteration.
//
// A Plan owns the per-matrix state: create one with NewPlan, run it with
// Run, and read the resulting Spectrum. SolveBatch diagonalizes several
// Hamiltonians concurrently. The device subpackage provides the same
// solve surface on top of pluggable accelerator backends.
package algolanczos
