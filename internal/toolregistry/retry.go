package toolregistry

import (
	"context"

	"github.com/agentcore/agentcore/internal/domain/ports"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
)

// retryingTool wraps Execute with retry+circuit-breaker, mirroring
// routing.ClientFactory's retryingProvider: only a Go-level error
// (infrastructure failure) is retried and recorded against the breaker. A
// tool that returns normally with ToolResult.Error set is ordinary tool
// output the script runtime must see verbatim, not a retry trigger.
type retryingTool struct {
	delegate ports.Tool
	breaker  *coreerrors.CircuitBreaker
	retry    coreerrors.RetryConfig
}

func (w *retryingTool) Definition() ports.ToolDefinition { return w.delegate.Definition() }

func (w *retryingTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	if err := w.breaker.Allow(); err != nil {
		return ports.ToolResult{CallID: call.ID, Error: err.Error()}, nil
	}

	result, err := coreerrors.RetryWithResult(ctx, w.retry, func(ctx context.Context) (ports.ToolResult, error) {
		return w.delegate.Execute(ctx, call)
	})
	w.breaker.Mark(err)
	if err != nil {
		return ports.ToolResult{CallID: call.ID, Error: err.Error()}, nil
	}
	return result, nil
}
