package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans around executor-pipeline stages. When tracing is
// disabled it wraps the global no-op TracerProvider, so Start is always
// safe to call unconditionally from the executor.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider // nil when tracing is disabled
}

// NewTracer builds a Tracer. When cfg.Enabled is false, spans are created
// against the otel package's default no-op provider and carry no cost.
func NewTracer(cfg TracingConfig) (*Tracer, error) {
	if !cfg.Enabled {
		return &Tracer{tracer: otel.Tracer("agentcore")}, nil
	}
	cfg = Config{Tracing: cfg}.normalize().Tracing

	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", cfg.ServiceName)))
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
		sdktrace.WithResource(res),
	)
	return &Tracer{tracer: provider.Tracer("agentcore"), provider: provider}, nil
}

// Start begins a span named name, returning the span-bearing context and
// the span itself; callers must call span.End().
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}

// Shutdown flushes and stops the underlying TracerProvider. Safe to call
// on a disabled Tracer.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
