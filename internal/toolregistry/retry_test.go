package toolregistry

import (
	"context"
	"testing"
	"time"

	"github.com/agentcore/agentcore/internal/domain/ports"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
	"github.com/stretchr/testify/require"
)

type transientOnceTool struct {
	def      ports.ToolDefinition
	failures int
	calls    int
}

type transientErr struct{}

func (transientErr) Error() string { return "connection reset" }

func (s *transientOnceTool) Definition() ports.ToolDefinition { return s.def }

func (s *transientOnceTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	s.calls++
	if s.calls <= s.failures {
		return ports.ToolResult{}, transientErr{}
	}
	return ports.ToolResult{CallID: call.ID, Content: "recovered"}, nil
}

func TestRetryingTool_RetriesTransientFailure(t *testing.T) {
	delegate := &transientOnceTool{
		def:      ports.ToolDefinition{Name: "flaky"},
		failures: 2,
	}
	wrapped := &retryingTool{
		delegate: delegate,
		breaker:  coreerrors.NewCircuitBreaker("test", coreerrors.DefaultCircuitBreakerConfig()),
		retry:    coreerrors.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, JitterFactor: 0},
	}

	result, err := wrapped.Execute(context.Background(), ports.ToolCall{ID: "call-1"})
	require.NoError(t, err)
	require.Equal(t, "recovered", result.Content)
	require.Equal(t, 3, delegate.calls)
}

func TestRetryingTool_ApplicationErrorIsNotRetried(t *testing.T) {
	delegate := &stubErrorResultTool{}
	wrapped := &retryingTool{
		delegate: delegate,
		breaker:  coreerrors.NewCircuitBreaker("test-app-err", coreerrors.DefaultCircuitBreakerConfig()),
		retry:    coreerrors.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, JitterFactor: 0},
	}

	result, err := wrapped.Execute(context.Background(), ports.ToolCall{ID: "call-2"})
	require.NoError(t, err)
	require.Equal(t, "application failure", result.Error)
	require.Equal(t, 1, delegate.calls)
}

type stubErrorResultTool struct{ calls int }

func (s *stubErrorResultTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{Name: "erroring"}
}

func (s *stubErrorResultTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	s.calls++
	return ports.ToolResult{CallID: call.ID, Error: "application failure"}, nil
}
