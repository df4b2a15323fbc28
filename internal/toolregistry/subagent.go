package toolregistry

import (
	"context"
	"encoding/json"
	"fmt"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/domain/ports"
)

// SubagentCoordinator recursively routes a sibling sub-task at the
// requested model tier. The subagent it spawns has no file or tool access
// beyond what this call brokers, per spec.md §4.4.
type SubagentCoordinator interface {
	RunSubagent(ctx context.Context, parentTaskID, task, contextHint, modelTier string) (taskdomain.Response, error)
}

// SubagentTool is the host tool backing `subagent({task, context, model_tier})`.
type SubagentTool struct {
	coordinator SubagentCoordinator
}

func NewSubagentTool(coordinator SubagentCoordinator) *SubagentTool {
	return &SubagentTool{coordinator: coordinator}
}

func (t *SubagentTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "subagent",
		Description: "Recursively invoke the router with a sibling sub-task at the requested model tier.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task":       map[string]any{"type": "string"},
				"context":    map[string]any{"type": "string"},
				"model_tier": map[string]any{"type": "string"},
			},
			"required": []string{"task"},
		},
		Safety: ports.SafetyReversible,
	}
}

func (t *SubagentTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	task := stringArg(call.Arguments, "task")
	if task == "" {
		return ports.ToolResult{CallID: call.ID, Error: "subagent: missing required argument \"task\""}, nil
	}
	contextHint := stringArg(call.Arguments, "context")
	modelTier := stringArg(call.Arguments, "model_tier")

	resp, err := t.coordinator.RunSubagent(ctx, call.TaskID, task, contextHint, modelTier)
	if err != nil {
		return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("subagent: %v", err)}, nil
	}

	content, marshalErr := json.Marshal(map[string]any{
		"text":        resp.Text,
		"confidence":  resp.Confidence,
		"provider":    resp.ProviderName,
		"latency_ms":  resp.LatencyMS,
		"token_usage": resp.TokenUsage,
	})
	if marshalErr != nil {
		return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("subagent: marshal response: %v", marshalErr)}, nil
	}
	return ports.ToolResult{CallID: call.ID, Content: string(content)}, nil
}
