package scriptruntime

import (
	"github.com/agentcore/agentcore/internal/domain/ports"
)

func toolCallFor(taskID, name string, args map[string]any) ports.ToolCall {
	return ports.ToolCall{Name: name, Arguments: args, TaskID: taskID}
}

// toolResultAsValue turns a ToolResult into the plain value a script
// statement sees when it binds the call's result: the structured object a
// real host function would resolve to, success or failure alike, per
// spec.md §4.4's "tool success/failure does not reject the script-side
// promise" contract.
func toolResultAsValue(result ports.ToolResult) map[string]any {
	value := map[string]any{
		"content": result.Content,
		"error":   result.Error,
	}
	for k, v := range result.Metadata {
		value[k] = v
	}
	return value
}
