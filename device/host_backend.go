package device

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/cblas128"

	algolanczos "github.com/cwbudde/algo-lanczos"
	"github.com/cwbudde/algo-lanczos/hamiltonian"
)

// HostBackend is a CPU-backed device backend for development and tests.
// It satisfies the backend interfaces but executes on the host.
type HostBackend struct {
	device DeviceInfo
}

// NewHostBackend returns a host backend with a single pseudo-device.
func NewHostBackend() *HostBackend {
	return &HostBackend{
		device: DeviceInfo{
			Name:       "Host",
			Vendor:     "algolanczos",
			Driver:     "host",
			MemoryMB:   0,
			ComputeCap: "cpu",
		},
	}
}

func (b *HostBackend) Info() BackendInfo {
	return BackendInfo{
		Name:        "host",
		Version:     "0.1",
		Description: "CPU-backed device backend",
	}
}

func (b *HostBackend) Available() bool {
	return true
}

func (b *HostBackend) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{b.device}, nil
}

func (b *HostBackend) NewContext(deviceIndex int) (Context, error) {
	if deviceIndex != 0 {
		return nil, fmt.Errorf("host backend: device index %d out of range", deviceIndex)
	}
	return &hostContext{device: b.device}, nil
}

// RegisterHostBackend registers the host backend as the active backend.
func RegisterHostBackend() {
	RegisterBackend(NewHostBackend())
}

type hostContext struct {
	device DeviceInfo
}

func (c *hostContext) Device() DeviceInfo {
	return c.device
}

func (c *hostContext) NewBuffer(n int) (Buffer, error) {
	if n < 0 {
		return nil, ErrInvalidLength
	}
	return &hostBuffer{data: make([]complex128, n)}, nil
}

func (c *hostContext) NewStream() (Stream, error) {
	return &hostStream{}, nil
}

func (c *hostContext) Kernels() Kernels {
	return hostKernels{}
}

// NewSolver declines so plans run the generic kernel-driven recurrence;
// the host backend has no fused solve path of its own.
func (c *hostContext) NewSolver(m *hamiltonian.Matrix, opts Options) (SolverImpl, error) {
	return nil, ErrNotImplemented
}

func (c *hostContext) Close() error {
	return nil
}

type hostBuffer struct {
	data []complex128
}

func (b *hostBuffer) Len() int {
	return len(b.data)
}

func (b *hostBuffer) Upload(src []complex128) error {
	if src == nil {
		return ErrNilSlice
	}
	if len(src) < len(b.data) {
		return ErrLengthMismatch
	}
	copy(b.data, src[:len(b.data)])
	return nil
}

func (b *hostBuffer) Download(dst []complex128) error {
	if dst == nil {
		return ErrNilSlice
	}
	if len(dst) < len(b.data) {
		return ErrLengthMismatch
	}
	copy(dst[:len(b.data)], b.data)
	return nil
}

func (b *hostBuffer) Close() error {
	b.data = nil
	return nil
}

type hostStream struct{}

func (s *hostStream) Synchronize() error { return nil }
func (s *hostStream) Close() error       { return nil }

// hostKernels executes the primitive device ops with cblas128.
type hostKernels struct{}

func hostData(b Buffer) ([]complex128, error) {
	hb, ok := b.(*hostBuffer)
	if !ok {
		return nil, ErrNotImplemented
	}
	return hb.data, nil
}

func hostVec(d []complex128) cblas128.Vector {
	return cblas128.Vector{N: len(d), Inc: 1, Data: d}
}

func (hostKernels) SpMV(dst, src Buffer, m *hamiltonian.Matrix) error {
	d, err := hostData(dst)
	if err != nil {
		return err
	}
	s, err := hostData(src)
	if err != nil {
		return err
	}
	return m.MulVec(d, s)
}

func (hostKernels) Normalize(v Buffer, norm float64) error {
	d, err := hostData(v)
	if err != nil {
		return err
	}
	if !(norm > 0) || math.IsInf(norm, 1) {
		return algolanczos.ErrZeroNorm
	}
	cblas128.Dscal(1/norm, hostVec(d))
	return nil
}

func (hostKernels) Dotc(x, y Buffer) (complex128, error) {
	xd, err := hostData(x)
	if err != nil {
		return 0, err
	}
	yd, err := hostData(y)
	if err != nil {
		return 0, err
	}
	if len(xd) != len(yd) {
		return 0, ErrLengthMismatch
	}
	return cblas128.Dotc(hostVec(xd), hostVec(yd)), nil
}

func (hostKernels) Axpy(alpha complex128, x, y Buffer) error {
	xd, err := hostData(x)
	if err != nil {
		return err
	}
	yd, err := hostData(y)
	if err != nil {
		return err
	}
	if len(xd) != len(yd) {
		return ErrLengthMismatch
	}
	cblas128.Axpy(alpha, hostVec(xd), hostVec(yd))
	return nil
}

func (hostKernels) Nrm2(x Buffer) (float64, error) {
	xd, err := hostData(x)
	if err != nil {
		return 0, err
	}
	return cblas128.Nrm2(hostVec(xd)), nil
}
