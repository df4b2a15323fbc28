// Package scriptruntime hosts the model's emitted code. It has no embedded
// scripting language: "script" is a restricted declarative pipeline of tool
// calls (see Script), interpreted directly, while the JSON-RPC envelope and
// RPCConn framing in this package exist to carry that same pipeline out to
// a sandboxed agentcore-script-host subprocess when isolation is required.
package scriptruntime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
)

// Config controls a Runtime's evaluation limits.
type Config struct {
	// StepTimeout bounds a single Execute call's wall clock. Zero disables
	// the timeout.
	StepTimeout time.Duration
}

// Runtime evaluates Scripts against a live ToolRegistry, maintaining a
// persistent variable store across Execute calls for the same instance —
// standing in for the persistent evaluation context a real embedded engine
// would keep, per spec.md §4.4.
type Runtime struct {
	tools  ToolInvoker
	config Config

	mu   sync.Mutex
	vars map[string]any
}

// New constructs a Runtime bound to tools.
func New(tools ToolInvoker, config Config) *Runtime {
	return &Runtime{tools: tools, config: config, vars: make(map[string]any)}
}

// Execute parses and evaluates a script body, running every statement in
// order and returning its Return value. A throwing statement — a tool that
// is unregistered or whose Execute returns an error — yields
// ExecutionFailedError without leaving the Runtime unusable for the next
// Execute call, per spec.md §4.4's failure-isolation contract. A "$name"
// reference to an unbound variable is not an error: it passes through as
// the literal string.
func (r *Runtime) Execute(ctx context.Context, taskID, raw string) (*ExecutionResult, error) {
	script, err := ParseScript(raw)
	if err != nil {
		return nil, &coreerrors.ExecutionFailedError{Message: "script parse failed", Cause: err}
	}

	if r.config.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.StepTimeout)
		defer cancel()
	}

	scoped := make(map[string]any)
	for _, stmt := range script.Statements {
		result, err := r.runStatement(ctx, taskID, stmt, scoped)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &coreerrors.TimeoutError{Operation: "script execution"}
			}
			return nil, &coreerrors.ExecutionFailedError{Message: fmt.Sprintf("tool %q failed", stmt.Tool), Cause: err}
		}
		if stmt.Bind != "" {
			scoped[stmt.Bind] = result
		}
	}

	ret := resolveValue(script.Return, scoped)
	exec := &ExecutionResult{Value: ret}
	if plan, ok := asPlan(ret); ok {
		exec.Plan = plan
	}

	r.mu.Lock()
	for k, v := range scoped {
		r.vars[k] = v
	}
	r.mu.Unlock()

	return exec, nil
}

func (r *Runtime) runStatement(ctx context.Context, taskID string, stmt ToolInvocation, scoped map[string]any) (any, error) {
	return r.invoke(ctx, taskID, stmt, scoped)
}

func (r *Runtime) invoke(ctx context.Context, taskID string, stmt ToolInvocation, scoped map[string]any) (any, error) {
	tool, err := r.tools.Get(stmt.Tool)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	for k, v := range r.vars {
		if _, shadowed := scoped[k]; !shadowed {
			scoped[k] = v
		}
	}
	r.mu.Unlock()

	args := make(map[string]any, len(stmt.Args))
	for k, v := range stmt.Args {
		args[k] = resolveValue(v, scoped)
	}

	result, err := tool.Execute(ctx, toolCallFor(taskID, stmt.Tool, args))
	if err != nil {
		return nil, err
	}
	return toolResultAsValue(result), nil
}

// resolveValue substitutes a "$name" string reference with its bound value
// from scoped, and recurses into maps/slices so nested args can reference
// earlier bindings too. Any other value passes through unchanged.
func resolveValue(v any, scoped map[string]any) any {
	switch val := v.(type) {
	case string:
		if len(val) > 1 && val[0] == '$' {
			name, path, hasPath := strings.Cut(val[1:], ".")
			bound, ok := scoped[name]
			if !ok {
				return val
			}
			if !hasPath {
				return bound
			}
			return fieldAt(bound, path)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = resolveValue(inner, scoped)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = resolveValue(inner, scoped)
		}
		return out
	default:
		return val
	}
}

// fieldAt looks up a single field name within bound (expected to be the
// map[string]any shape a tool result resolves to), supporting "$name.field"
// references into an earlier statement's bound result.
func fieldAt(bound any, field string) any {
	obj, ok := bound.(map[string]any)
	if !ok {
		return nil
	}
	return obj[field]
}
