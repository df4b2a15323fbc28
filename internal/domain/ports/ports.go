// Package ports declares the small, closed set of interfaces the core
// depends on and implements against: Provider, RoutingStrategy, Tool and
// Validator.
package ports

import (
	"context"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	ctxdomain "github.com/agentcore/agentcore/internal/domain/context"
)

// Provider is a text-in/text-out model backend. Implementations must not
// mutate shared state, must not call tools, and must be safe to hold behind
// a shared, clonable handle.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	Generate(ctx context.Context, query string, c ctxdomain.Context) (taskdomain.Response, error)
	EstimateCost(c ctxdomain.Context) float64
}

// RoutingStrategy picks a model for a task. The router iterates strategies
// by descending Priority; the first that AppliesTo a task and Selects an
// available, enabled model wins.
type RoutingStrategy interface {
	Name() string
	Priority() int
	AppliesTo(t *taskdomain.Task) bool
	Select(ctx context.Context, t *taskdomain.Task) (string, bool)
}

// ToolCall is one invocation of a host tool from the script runtime.
type ToolCall struct {
	ID            string
	Name          string
	Arguments     map[string]any
	SessionID     string
	TaskID        string
	ParentTaskID  string
}

// ToolResult is the structured outcome of a tool call. Tool success/failure
// does not reject the script-side promise; the script always receives this
// value so it can inspect outcomes (exit_code, stderr, ...) without
// exceptions.
type ToolResult struct {
	CallID   string
	Content  string
	Error    string
	Metadata map[string]any
}

// SafetyLevel classifies how reversible a tool's effect is.
type SafetyLevel int

const (
	SafetyReadOnly SafetyLevel = iota
	SafetyReversible
	SafetyHighImpact
	SafetyIrreversible
)

// ToolDefinition is the schema a Tool exposes to the provider / script host.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Dangerous   bool
	Safety      SafetyLevel
}

// Tool is one host-side capability callable from the script runtime.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, call ToolCall) (ToolResult, error)
}

// Validator runs one stage of the validation pipeline.
type Validator interface {
	Name() string
	Validate(ctx context.Context, resp taskdomain.Response, t *taskdomain.Task) (taskdomain.StageResult, error)
}
