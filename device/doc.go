// Package device provides an accelerator seam for algolanczos.
//
// This package defines a dedicated device solve API that mirrors the CPU
// solver surface while allowing persistent device buffers and
// backend-specific execution contexts. A host (CPU) backend is always
// available; real accelerator backends register themselves at runtime.
package device
