package algolanczos

import (
	"runtime"

	"github.com/rs/zerolog"
)

// Options controls a Lanczos solve.
type Options struct {
	// MaxIter caps the Krylov dimension. The effective cap is
	// min(MaxIter, Dim).
	MaxIter int

	// NumEig is how many of the lowest eigenvalues to converge.
	// Must satisfy 1 <= NumEig < Dim.
	NumEig int

	// Tolerance is the convergence requirement: the solve stops once the
	// NumEig lowest Ritz values each move by less than Tolerance between
	// successive iterations.
	Tolerance float64

	// Reorthogonalize enables full reorthogonalization of each new basis
	// vector against the stored Krylov basis. Slower per iteration but
	// immune to the loss of orthogonality that produces spurious
	// eigenvalue copies. Implied by WantVectors.
	Reorthogonalize bool

	// WantVectors requests Ritz vectors for the NumEig lowest eigenvalues.
	WantVectors bool

	// Seed seeds the random start vector. Equal seeds give identical runs.
	Seed int64

	// Workers bounds concurrent solves in SolveBatch. Zero or negative
	// means GOMAXPROCS.
	Workers int

	// Logger receives per-iteration progress at debug level. Nil disables
	// logging.
	Logger *zerolog.Logger
}

// DefaultOptions returns the options used by the zero-config paths:
// ground state only, full reorthogonalization, tight tolerance.
func DefaultOptions() Options {
	return Options{
		MaxIter:         300,
		NumEig:          1,
		Tolerance:       1e-10,
		Reorthogonalize: true,
		Seed:            1,
		Workers:         runtime.GOMAXPROCS(0),
	}
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return o.Logger.With().Str("component", "lanczos").Logger()
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Workers
}
