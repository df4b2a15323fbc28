package toolregistry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/agentcore/agentcore/internal/domain/ports"
)

// BashTool invokes bash on all platforms for deterministic shell semantics,
// per spec.md §4.4, and never surfaces a non-zero exit as a Go error: the
// caller inspects exit_code/stderr in the result instead.
type BashTool struct{}

func NewBashTool() *BashTool { return &BashTool{} }

func (t *BashTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "bash",
		Description: "Run a shell command via bash and capture stdout, stderr and exit code.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string"},
			},
			"required": []string{"command"},
		},
		Dangerous: true,
		Safety:    ports.SafetyIrreversible,
	}
}

func (t *BashTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	command, _ := call.Arguments["command"].(string)
	if command == "" {
		return ports.ToolResult{CallID: call.ID, Error: "bash: missing required argument \"command\""}, nil
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("bash: failed to start: %v", runErr)}, nil
		}
	}

	result := ports.ToolResult{
		CallID:  call.ID,
		Content: stdout.String(),
		Metadata: map[string]any{
			"command":   command,
			"stdout":    stdout.String(),
			"stderr":    stderr.String(),
			"exit_code": exitCode,
		},
	}
	if exitCode != 0 {
		result.Error = fmt.Sprintf("command exited with status %d", exitCode)
		result.Content = stderr.String()
	}
	return result, nil
}
