package device

import "errors"

var (
	// ErrNoBackend is returned when no backend is registered.
	ErrNoBackend = errors.New("algolanczos/device: no backend registered")

	// ErrBackendUnavailable is returned when the backend is registered but
	// not usable on the current system (no device, driver missing).
	ErrBackendUnavailable = errors.New("algolanczos/device: backend unavailable")

	// ErrNotImplemented is returned by stubbed operations.
	ErrNotImplemented = errors.New("algolanczos/device: not implemented")

	// ErrInvalidLength is returned for invalid buffer or matrix sizes.
	ErrInvalidLength = errors.New("algolanczos/device: invalid length")

	// ErrNilSlice is returned when a nil slice is passed to a transfer.
	ErrNilSlice = errors.New("algolanczos/device: nil slice")

	// ErrLengthMismatch is returned when buffer and slice lengths disagree.
	ErrLengthMismatch = errors.New("algolanczos/device: length mismatch")
)
