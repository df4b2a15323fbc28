package toolregistry

import (
	"context"
	"testing"

	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/stretchr/testify/require"
)

type fakeApprover struct {
	approve bool
	calls   int
}

func (f *fakeApprover) RequestApproval(ctx context.Context, req ApprovalRequest) (ApprovalResponse, error) {
	f.calls++
	return ApprovalResponse{Approved: f.approve}, nil
}

type dangerousStub struct{ executed int }

func (d *dangerousStub) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{Name: "dangerous", Dangerous: true, Safety: ports.SafetyIrreversible}
}

func (d *dangerousStub) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	d.executed++
	return ports.ToolResult{CallID: call.ID, Content: "did it"}, nil
}

func TestApprovalTool_BlocksDangerousWithoutApproval(t *testing.T) {
	delegate := &dangerousStub{}
	tool := &approvalTool{delegate: delegate}

	approver := &fakeApprover{approve: false}
	ctx := WithApprover(context.Background(), approver)
	result, err := tool.Execute(ctx, ports.ToolCall{ID: "c1"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Error)
	require.Equal(t, 0, delegate.executed)
	require.Equal(t, 1, approver.calls)
}

func TestApprovalTool_AllowsDangerousWhenApproved(t *testing.T) {
	delegate := &dangerousStub{}
	tool := &approvalTool{delegate: delegate}

	approver := &fakeApprover{approve: true}
	ctx := WithApprover(context.Background(), approver)
	result, err := tool.Execute(ctx, ports.ToolCall{ID: "c1"})
	require.NoError(t, err)
	require.Empty(t, result.Error)
	require.Equal(t, 1, delegate.executed)
}

func TestApprovalTool_AutoApproveSkipsApprover(t *testing.T) {
	delegate := &dangerousStub{}
	tool := &approvalTool{delegate: delegate}

	ctx := WithAutoApprove(context.Background())
	result, err := tool.Execute(ctx, ports.ToolCall{ID: "c1"})
	require.NoError(t, err)
	require.Empty(t, result.Error)
	require.Equal(t, 1, delegate.executed)
}

func TestApprovalTool_NoApproverAttachedExecutesNormally(t *testing.T) {
	delegate := &dangerousStub{}
	tool := &approvalTool{delegate: delegate}

	result, err := tool.Execute(context.Background(), ports.ToolCall{ID: "c1"})
	require.NoError(t, err)
	require.Empty(t, result.Error)
	require.Equal(t, 1, delegate.executed)
}
