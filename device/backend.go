package device

import (
	"context"
	"sync"

	"github.com/cwbudde/algo-lanczos/hamiltonian"
)

// Backend is implemented by accelerator backends (CUDA, ROCm, Metal,
// ...). It is responsible for device discovery, buffer allocation, and
// execution.
type Backend interface {
	Info() BackendInfo
	Available() bool
	Devices() ([]DeviceInfo, error)
	NewContext(deviceIndex int) (Context, error)
}

// Context represents a backend-specific execution context tied to a device.
type Context interface {
	Device() DeviceInfo
	// NewBuffer allocates a zero-initialized device buffer of n
	// complex128 elements.
	NewBuffer(n int) (Buffer, error)
	// NewStream creates an execution stream/queue.
	NewStream() (Stream, error)
	// Kernels exposes primitive vector and sparse matrix-vector
	// operations on buffers of this context.
	Kernels() Kernels
	// NewSolver creates a backend-specific fused solver bound to m.
	// Backends without one return ErrNotImplemented; plans then fall
	// back to the generic kernel-driven recurrence.
	NewSolver(m *hamiltonian.Matrix, opts Options) (SolverImpl, error)
	Close() error
}

// Buffer is a device vector of complex128 elements.
type Buffer interface {
	Len() int
	// Upload copies from host to device.
	Upload(src []complex128) error
	// Download copies from device to host.
	Download(dst []complex128) error
	Close() error
}

// Stream represents an execution queue/stream.
type Stream interface {
	Synchronize() error
	Close() error
}

// Kernels are the primitive operations the Lanczos recurrence needs on a
// device. Buffers must belong to the context that produced the Kernels.
type Kernels interface {
	// SpMV computes dst = m·src.
	SpMV(dst, src Buffer, m *hamiltonian.Matrix) error
	// Normalize scales v by 1/norm.
	Normalize(v Buffer, norm float64) error
	// Dotc returns ⟨x, y⟩ with x conjugated.
	Dotc(x, y Buffer) (complex128, error)
	// Axpy computes y += alpha·x.
	Axpy(alpha complex128, x, y Buffer) error
	// Nrm2 returns the Euclidean norm of x.
	Nrm2(x Buffer) (float64, error)
}

// SolverImpl is a backend-specific Lanczos solver implementation.
type SolverImpl interface {
	Dim() int
	Run(ctx context.Context) (*Spectrum, error)
	Close() error
}

var (
	backendMu sync.RWMutex
	backend   Backend
)

// RegisterBackend registers an accelerator backend. Passing nil clears
// the backend.
func RegisterBackend(b Backend) {
	backendMu.Lock()
	backend = b
	backendMu.Unlock()
}

// CurrentBackendInfo reports the currently registered backend, if any.
func CurrentBackendInfo() (BackendInfo, bool) {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	if b == nil {
		return BackendInfo{}, false
	}
	return b.Info(), true
}

func getBackend() Backend {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	return b
}
