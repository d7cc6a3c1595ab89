// Package hamiltonian provides sparse Hermitian matrices in compressed
// sparse row form, together with builders for common quantum spin-chain
// Hamiltonians. Matrices built here are the input to the Lanczos solver
// in the parent package.
package hamiltonian
