package toolregistry

import (
	"context"

	"github.com/agentcore/agentcore/internal/domain/ports"
)

// ApprovalRequest describes a dangerous operation awaiting a human decision.
type ApprovalRequest struct {
	ToolName  string
	Arguments map[string]any
	Safety    ports.SafetyLevel
}

// ApprovalResponse is the human's decision.
type ApprovalResponse struct {
	Approved bool
	Reason   string
}

// Approver gates execution of tools whose definition marks them Dangerous.
type Approver interface {
	RequestApproval(ctx context.Context, req ApprovalRequest) (ApprovalResponse, error)
}

type approverCtxKey struct{}
type autoApproveCtxKey struct{}

// WithApprover attaches an Approver to ctx for the duration of one
// AgentExecutor.Execute call.
func WithApprover(ctx context.Context, approver Approver) context.Context {
	return context.WithValue(ctx, approverCtxKey{}, approver)
}

// ApproverFromContext returns the Approver attached by WithApprover, if any.
func ApproverFromContext(ctx context.Context) (Approver, bool) {
	a, ok := ctx.Value(approverCtxKey{}).(Approver)
	return a, ok
}

// WithAutoApprove marks ctx as running in an unattended mode where dangerous
// tools execute without prompting (e.g. CI, a subagent whose parent already
// approved the enclosing task).
func WithAutoApprove(ctx context.Context) context.Context {
	return context.WithValue(ctx, autoApproveCtxKey{}, true)
}

func autoApproveFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(autoApproveCtxKey{}).(bool)
	return v
}

// approvalTool gates Dangerous tools on an Approver found in ctx. A tool
// with no Approver attached and no auto-approve marker executes normally —
// approval is opt-in infrastructure a host wires up, not a hard requirement
// every caller must satisfy.
type approvalTool struct {
	delegate ports.Tool
}

func (a *approvalTool) Definition() ports.ToolDefinition { return a.delegate.Definition() }

func (a *approvalTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	def := a.delegate.Definition()
	if !def.Dangerous || autoApproveFromContext(ctx) {
		return a.delegate.Execute(ctx, call)
	}

	approver, ok := ApproverFromContext(ctx)
	if !ok {
		return a.delegate.Execute(ctx, call)
	}

	resp, err := approver.RequestApproval(ctx, ApprovalRequest{
		ToolName:  call.Name,
		Arguments: call.Arguments,
		Safety:    def.Safety,
	})
	if err != nil {
		return ports.ToolResult{CallID: call.ID, Error: err.Error()}, nil
	}
	if !resp.Approved {
		return ports.ToolResult{CallID: call.ID, Error: "operation rejected: " + resp.Reason}, nil
	}
	return a.delegate.Execute(ctx, call)
}
