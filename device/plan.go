package device

import (
	"context"
	"errors"

	"github.com/cwbudde/algo-lanczos/hamiltonian"
)

// Plan is a device-backed Lanczos solver for one Hamiltonian.
//
// The plan owns a context and streams on the registered backend and is
// safe for concurrent use only if the backend is thread-safe.
type Plan struct {
	dim     int
	ctx     Context
	streams []Stream
	impl    SolverImpl
}

// PlanOptions controls device plan creation.
type PlanOptions struct {
	// DeviceIndex selects which device to use (0 = default).
	DeviceIndex int

	// StreamCount requests a number of execution streams/queues.
	StreamCount int

	// Solver configures the Lanczos iteration itself.
	Solver Options
}

// NewPlan creates a device plan using the registered backend.
//
// Backends with a fused solver provide it through Context.NewSolver;
// everyone else answers ErrNotImplemented and gets the generic
// recurrence from NewKernelSolver, driven through their Buffers and
// Kernels.
func NewPlan(m *hamiltonian.Matrix, opts PlanOptions) (*Plan, error) {
	if m == nil || m.Dim() < 1 {
		return nil, ErrInvalidLength
	}

	backend := getBackend()
	if backend == nil {
		return nil, ErrNoBackend
	}
	if !backend.Available() {
		return nil, ErrBackendUnavailable
	}

	ctx, err := backend.NewContext(opts.DeviceIndex)
	if err != nil {
		return nil, err
	}

	streamCount := opts.StreamCount
	if streamCount <= 0 {
		streamCount = 1
	}

	streams := make([]Stream, 0, streamCount)
	for i := 0; i < streamCount; i++ {
		stream, err := ctx.NewStream()
		if err != nil {
			for _, s := range streams {
				_ = s.Close()
			}
			_ = ctx.Close()
			return nil, err
		}
		streams = append(streams, stream)
	}

	impl, err := ctx.NewSolver(m, opts.Solver)
	if errors.Is(err, ErrNotImplemented) {
		impl, err = NewKernelSolver(ctx, m, opts.Solver)
	}
	if err != nil {
		for _, s := range streams {
			_ = s.Close()
		}
		_ = ctx.Close()
		return nil, err
	}

	return &Plan{
		dim:     m.Dim(),
		ctx:     ctx,
		streams: streams,
		impl:    impl,
	}, nil
}

// Dim returns the matrix dimension this Plan solves.
func (p *Plan) Dim() int {
	if p == nil {
		return 0
	}
	return p.dim
}

// Run executes the Lanczos solve on the device.
func (p *Plan) Run(ctx context.Context) (*Spectrum, error) {
	if p == nil || p.impl == nil {
		return nil, ErrNotImplemented
	}
	sp, err := p.impl.Run(ctx)
	if err != nil {
		return sp, err
	}
	for _, s := range p.streams {
		if err := s.Synchronize(); err != nil {
			return sp, err
		}
	}
	return sp, nil
}

// Close releases device resources associated with the plan.
func (p *Plan) Close() error {
	if p == nil {
		return nil
	}
	if p.impl != nil {
		_ = p.impl.Close()
		p.impl = nil
	}
	var firstErr error
	for _, s := range p.streams {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.streams = nil
	if p.ctx != nil {
		if err := p.ctx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.ctx = nil
	}
	return firstErr
}
