package toolregistry

import (
	"context"
	"testing"

	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/stretchr/testify/require"
)

func TestBashTool_CapturesStdoutOnSuccess(t *testing.T) {
	tool := NewBashTool()
	result, err := tool.Execute(context.Background(), ports.ToolCall{
		ID:        "call-1",
		Arguments: map[string]any{"command": "printf hello"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Error)
	require.Equal(t, "hello", result.Content)
	require.Equal(t, 0, result.Metadata["exit_code"])
}

func TestBashTool_NonZeroExitNeverReturnsGoError(t *testing.T) {
	tool := NewBashTool()
	result, err := tool.Execute(context.Background(), ports.ToolCall{
		ID:        "call-2",
		Arguments: map[string]any{"command": "echo oops 1>&2; exit 3"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Error)
	require.Equal(t, 3, result.Metadata["exit_code"])
}

func TestBashTool_MissingCommandIsToolError(t *testing.T) {
	tool := NewBashTool()
	result, err := tool.Execute(context.Background(), ports.ToolCall{ID: "call-3"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Error)
}
