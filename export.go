package algolanczos

import (
	"fmt"
	"io"
	"os"
)

// WriteSpectrum writes a fixed-width eigenvalue table to w.
func WriteSpectrum(w io.Writer, s *Spectrum) error {
	if s == nil {
		return ErrNilSpectrum
	}
	if _, err := fmt.Fprintf(w, "# iterations=%d converged=%t\n", s.Iterations, s.Converged); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%4s  %24s  %12s\n", "i", "eigenvalue", "residual"); err != nil {
		return err
	}
	for i, ev := range s.Eigenvalues {
		var res float64
		if i < len(s.Residuals) {
			res = s.Residuals[i]
		}
		if _, err := fmt.Fprintf(w, "%4d  %24.16e  %12.4e\n", i, ev, res); err != nil {
			return err
		}
	}
	return nil
}

// ExportSpectrum saves a spectrum to a file in the format produced by
// WriteSpectrum.
func ExportSpectrum(filename string, s *Spectrum) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create spectrum file: %w", err)
	}

	defer f.Close()

	if err := WriteSpectrum(f, s); err != nil {
		return fmt.Errorf("failed to write spectrum: %w", err)
	}

	return nil
}
