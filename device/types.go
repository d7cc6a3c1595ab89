package device

import algolanczos "github.com/cwbudde/algo-lanczos"

// Options re-exports the solver options; device plans accept the same
// configuration as the CPU path.
type Options = algolanczos.Options

// Spectrum re-exports the solver result type.
type Spectrum = algolanczos.Spectrum

// DeviceInfo describes an accelerator device.
type DeviceInfo struct {
	Name       string
	Vendor     string
	Driver     string
	MemoryMB   int
	ComputeCap string
}

// BackendInfo describes a backend implementation.
type BackendInfo struct {
	Name        string
	Version     string
	Description string
}
