package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/davidcforbes/beads-kanban/internal/backend"
)

const backendScopeName = "github.com/davidcforbes/beads-kanban/backend"

// InstrumentedRunner wraps a backend.Runner with OTel tracing and
// metrics. Every subprocess invocation gets a span and is counted in
// bdk.backend.* metrics. Use WrapRunner to create one; it returns the
// original runner unchanged when telemetry is disabled.
type InstrumentedRunner struct {
	inner  backend.Runner
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapRunner returns r decorated with OTel instrumentation.
// When telemetry is disabled, r is returned as-is with zero overhead.
func WrapRunner(r backend.Runner) backend.Runner {
	if !Enabled() {
		return r
	}
	m := Meter(backendScopeName)
	ops, _ := m.Int64Counter("bdk.backend.invocations",
		metric.WithDescription("Total backend CLI invocations"),
	)
	dur, _ := m.Float64Histogram("bdk.backend.invocation.duration",
		metric.WithDescription("Backend invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("bdk.backend.errors",
		metric.WithDescription("Total backend invocation errors"),
	)
	return &InstrumentedRunner{
		inner:  r,
		tracer: Tracer(backendScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// Run invokes the inner runner inside a client span.
func (r *InstrumentedRunner) Run(ctx context.Context, req backend.Request) (backend.Result, error) {
	op := backend.Operation(req.Args)
	attrs := []attribute.KeyValue{attribute.String("bd.op", op)}
	ctx, span := r.tracer.Start(ctx, "backend."+op,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	r.ops.Add(ctx, 1, metric.WithAttributes(attrs...))
	start := time.Now()

	res, err := r.inner.Run(ctx, req)

	span.SetAttributes(attribute.Int("bd.exit_code", res.ExitCode))
	r.dur.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		kindAttrs := append(attrs, attribute.String("bd.error.kind", string(backend.KindOf(err))))
		r.errs.Add(ctx, 1, metric.WithAttributes(kindAttrs...))
	}
	span.End()
	return res, err
}
