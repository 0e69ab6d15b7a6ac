// Package telemetry collects traces of the provisioning phases.
package telemetry

import (
	"context"
	"io"

	"github.com/gruntwork-io/fpack/internal/errors"
)

// Options configures the telemetry collection.
type Options struct {
	// TraceExporter names the span exporter: "none" (default) or "console".
	TraceExporter string
}

type Telemeter struct {
	*Tracer
}

// NewTelemeter initializes the telemetry collector.
func NewTelemeter(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Telemeter, error) {
	tracer, err := NewTracer(ctx, appName, appVersion, writer, opts)
	if err != nil {
		return nil, errors.New(err)
	}

	return &Telemeter{Tracer: tracer}, nil
}

// Shutdown shutdowns the telemetry provider, flushing the pending spans.
func (tlm *Telemeter) Shutdown(ctx context.Context) error {
	if tlm == nil || tlm.Tracer == nil || tlm.Tracer.provider == nil {
		return nil
	}

	if err := tlm.Tracer.provider.Shutdown(ctx); err != nil {
		return errors.New(err)
	}

	tlm.Tracer.provider = nil

	return nil
}

// Collect collects telemetry from function execution.
func (tlm *Telemeter) Collect(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if tlm == nil {
		return fn(ctx)
	}

	return tlm.Trace(ctx, name, attrs, fn)
}
