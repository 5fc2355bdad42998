package solver

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/heatnet/metrics"
	"github.com/katalvlaran/heatnet/network"
)

const tracerName = "heatnet/solver"

// Solve outcome labels.
const (
	StatusOK         = "ok"
	StatusDivergence = "divergence"
	StatusError      = "error"
)

// InstrumentOption configures Instrument.
type InstrumentOption func(*instrumented)

// WithTracerProvider traces through tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) InstrumentOption {
	return func(i *instrumented) {
		if tp != nil {
			i.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithMetrics records every solve in reg.
func WithMetrics(reg *metrics.Registry) InstrumentOption {
	return func(i *instrumented) { i.metrics = reg }
}

type instrumented struct {
	next    Solver
	tracer  trace.Tracer
	metrics *metrics.Registry
}

// Instrument wraps s so that every call opens a "solver.Solve" span with the
// element counts as attributes and is counted by status. Results and errors
// pass through unchanged.
func Instrument(s Solver, opts ...InstrumentOption) Solver {
	i := &instrumented{next: s, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

func (i *instrumented) Solve(ctx context.Context, net *network.Network) (*Results, error) {
	ctx, span := i.tracer.Start(ctx, "solver.Solve",
		trace.WithAttributes(
			attribute.Int("junction_count", net.NumJunctions()),
			attribute.Int("pipe_count", net.NumPipes()),
			attribute.Int("heat_exchanger_count", net.NumHeatExchangers()),
		),
	)
	defer span.End()

	start := time.Now()
	res, err := i.next.Solve(ctx, net)
	elapsed := time.Since(start)

	status := StatusOK
	switch {
	case errors.Is(err, ErrDivergence):
		status = StatusDivergence
	case err != nil:
		status = StatusError
	}
	i.metrics.RecordSolve(status, elapsed)
	span.SetAttributes(attribute.String("status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return res, err
}
