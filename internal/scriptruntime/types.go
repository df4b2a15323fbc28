package scriptruntime

import "github.com/agentcore/agentcore/internal/domain/ports"

// ToolInvocation is one statement in a Script: a tool call whose result is
// optionally bound to a variable for later statements to reference.
type ToolInvocation struct {
	Bind string         `json:"bind,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// Script is the restricted declarative pipeline the model emits in place of
// a real scripting language: a sequence of tool calls with simple variable
// binding, and an optional Return expression naming the final value. Args
// may reference a prior Bind with the form "$name" to thread values between
// statements, mirroring the persistent evaluation context spec.md §4.4
// describes for a real script engine.
type Script struct {
	Statements []ToolInvocation `json:"statements,omitempty"`
	Return     any              `json:"return,omitempty"`
}

// StepSpec is one step inside a TaskList-shaped Return value, matching the
// bulk-extraction contract in spec.md §4.4. ExitRequirement is kept as an
// unevaluated ToolInvocation handle; RunPlan invokes it lazily when the step
// runs, rather than evaluating it during bulk extraction.
type StepSpec struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	StepType        string           `json:"step_type"`
	ExitRequirement *ToolInvocation  `json:"exit_requirement,omitempty"`
	Dependencies    []string         `json:"dependencies,omitempty"`
}

// Plan is the TaskList shape extracted in bulk from a script's Return value.
type Plan struct {
	Title string     `json:"title"`
	Steps []StepSpec `json:"steps"`
}

// ExecutionResult is what ScriptRuntime.Execute hands back: the raw return
// value, and — when the return value matched the TaskList shape — the
// extracted Plan.
type ExecutionResult struct {
	Value any
	Plan  *Plan
}

// ToolInvoker bridges the runtime to a live tool registry. It is satisfied
// by toolregistry.Registry and its filtered views.
type ToolInvoker interface {
	Get(name string) (ports.Tool, error)
}

// EventSink receives step-level progress as RunPlan walks a Plan. Named
// after, but narrower than, the WorkUnit/Subtask updates spec.md §4.4
// describes — the executor package owns turning these into WorkUnit state
// and UI events.
type EventSink interface {
	StepStarted(taskID string, stepIndex int, step StepSpec)
	StepCompleted(taskID string, stepIndex int, result ports.ToolResult)
	StepFailed(taskID string, stepIndex int, reason string)
}

// noopSink discards every callback; used when RunPlan's caller doesn't need
// progress events.
type noopSink struct{}

func (noopSink) StepStarted(string, int, StepSpec)            {}
func (noopSink) StepCompleted(string, int, ports.ToolResult)   {}
func (noopSink) StepFailed(string, int, string)                {}
