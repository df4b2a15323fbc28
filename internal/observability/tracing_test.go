package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracer_Disabled(t *testing.T) {
	tracer, err := NewTracer(TracingConfig{Enabled: false})
	require.NoError(t, err)

	ctx, span := tracer.Start(context.Background(), "route_task")
	assert.NotNil(t, ctx)
	span.End()
	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestNewTracer_Enabled(t *testing.T) {
	tracer, err := NewTracer(TracingConfig{Enabled: true, ServiceName: "agentcore-test", SampleRate: 1.0})
	require.NoError(t, err)

	ctx, span := tracer.Start(context.Background(), "generate_with_context")
	assert.NotNil(t, ctx)
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, tracer.Shutdown(context.Background()))
}
