package toolregistry

import (
	"context"
	"testing"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/stretchr/testify/require"
)

type stubCoordinator struct {
	gotParent, gotTask, gotContext, gotTier string
	resp                                    taskdomain.Response
}

func (s *stubCoordinator) RunSubagent(ctx context.Context, parentTaskID, task, contextHint, modelTier string) (taskdomain.Response, error) {
	s.gotParent, s.gotTask, s.gotContext, s.gotTier = parentTaskID, task, contextHint, modelTier
	return s.resp, nil
}

func TestSubagentTool_ForwardsArgumentsAndReturnsResponse(t *testing.T) {
	coordinator := &stubCoordinator{resp: taskdomain.Response{Text: "done", Confidence: 0.9}}
	tool := NewSubagentTool(coordinator)

	result, err := tool.Execute(context.Background(), ports.ToolCall{
		ID: "s1", TaskID: "parent-1",
		Arguments: map[string]any{"task": "investigate bug", "context": "hint", "model_tier": "fast"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Error)
	require.Equal(t, "parent-1", coordinator.gotParent)
	require.Equal(t, "investigate bug", coordinator.gotTask)
	require.Equal(t, "fast", coordinator.gotTier)
	require.Contains(t, result.Content, "done")
}

func TestSubagentTool_RequiresTask(t *testing.T) {
	tool := NewSubagentTool(&stubCoordinator{})
	result, err := tool.Execute(context.Background(), ports.ToolCall{ID: "s1"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Error)
}
