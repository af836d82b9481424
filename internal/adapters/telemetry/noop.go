// Package telemetry provides progress reporting implementations. All of them
// are fire-and-forget: reporting failures never affect the pipeline.
package telemetry

import (
	"context"

	"go.trai.ch/lode/internal/core/ports"
)

var _ ports.Telemetry = (*Noop)(nil)

// Noop is a no-op implementation of ports.Telemetry.
type Noop struct{}

// NewNoop creates a new Noop recorder.
func NewNoop() *Noop {
	return &Noop{}
}

// Record returns a no-op vertex.
func (n *Noop) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (n *Noop) Close() error { return nil }

type noopVertex struct{}

func (noopVertex) Log(_ string) {}

func (noopVertex) Complete(_ error) {}

func (noopVertex) Cached() {}
