// Package toolregistry implements the closed host-tool set the script
// runtime calls into (bash, file ops, context requests, subagent), and the
// three-tier registry that wraps every tool with approval, retry and
// circuit-breaker protection, and call-ID propagation before it is exposed
// to the runtime.
package toolregistry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agentcore/agentcore/internal/domain/ports"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
)

// Registry implements a three-tier tool store: static (host tools
// registered at construction), dynamic (registered later, e.g. MCP-bridged
// or per-session tools) and mcp (named with an "mcp__" prefix). Every tool
// is wrapped once, at registration time, with the approval -> retry ->
// id-propagation chain.
type Registry struct {
	mu         sync.RWMutex
	static     map[string]ports.Tool
	dynamic    map[string]ports.Tool
	mcp        map[string]ports.Tool
	cachedDefs []ports.ToolDefinition
	defsDirty  bool

	breakers *coreerrors.CircuitBreakerManager
	retry    coreerrors.RetryConfig
}

// Config configures a new Registry. RetryConfig defaults to
// coreerrors.DefaultRetryConfig when left zero-valued.
type Config struct {
	Retry coreerrors.RetryConfig
}

// New builds an empty registry. Call RegisterBuiltins to populate the
// closed host-tool set.
func New(config Config) *Registry {
	retry := config.Retry
	if retry.MaxAttempts == 0 {
		retry = coreerrors.DefaultRetryConfig()
	}
	return &Registry{
		static:    make(map[string]ports.Tool),
		dynamic:   make(map[string]ports.Tool),
		mcp:       make(map[string]ports.Tool),
		defsDirty: true,
		breakers:  coreerrors.NewCircuitBreakerManager(coreerrors.DefaultCircuitBreakerConfig()),
		retry:     retry,
	}
}

// registerStatic wraps and installs a built-in tool. Callers
// (RegisterBuiltins, RegisterSubagent) hold r.mu.
func (r *Registry) registerStatic(tool ports.Tool) {
	name := tool.Definition().Name
	r.static[name] = r.wrap(tool)
	r.defsDirty = true
}

// Register installs a dynamically-added tool (e.g. MCP-bridged). Names
// prefixed "mcp__" are filed under the mcp tier.
func (r *Registry) Register(tool ports.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Definition().Name
	if _, exists := r.static[name]; exists {
		return fmt.Errorf("tool already exists: %s", name)
	}

	wrapped := r.wrap(tool)
	if len(name) > 5 && name[:5] == "mcp__" {
		r.mcp[name] = wrapped
	} else {
		r.dynamic[name] = wrapped
	}
	r.defsDirty = true
	return nil
}

// Unregister removes a dynamic or mcp tool. Built-in (static) tools cannot
// be unregistered.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.static[name]; ok {
		return fmt.Errorf("cannot unregister built-in tool: %s", name)
	}
	delete(r.dynamic, name)
	delete(r.mcp, name)
	r.defsDirty = true
	return nil
}

// Get resolves a tool by name across all three tiers.
func (r *Registry) Get(name string) (ports.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tool, ok := r.static[name]; ok {
		return tool, nil
	}
	if tool, ok := r.dynamic[name]; ok {
		return tool, nil
	}
	if tool, ok := r.mcp[name]; ok {
		return tool, nil
	}
	return nil, fmt.Errorf("tool not found: %s", name)
}

// List returns every tool's definition, sorted by name, cached until the
// next Register/Unregister invalidates it.
func (r *Registry) List() []ports.ToolDefinition {
	r.mu.RLock()
	if !r.defsDirty && r.cachedDefs != nil {
		defs := r.cachedDefs
		r.mu.RUnlock()
		return defs
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.defsDirty && r.cachedDefs != nil {
		return r.cachedDefs
	}
	defs := make([]ports.ToolDefinition, 0, len(r.static)+len(r.dynamic)+len(r.mcp))
	for _, t := range r.static {
		defs = append(defs, t.Definition())
	}
	for _, t := range r.dynamic {
		defs = append(defs, t.Definition())
	}
	for _, t := range r.mcp {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	r.cachedDefs = defs
	r.defsDirty = false
	return defs
}

// WithoutSubagent returns a view of the registry that hides the subagent
// tool, so a subagent's own tool calls cannot recursively spawn subagents.
func (r *Registry) WithoutSubagent() *FilteredRegistry {
	return &FilteredRegistry{parent: r, exclude: map[string]bool{"subagent": true}}
}

// FilteredRegistry wraps a Registry and hides a set of tool names.
type FilteredRegistry struct {
	parent  *Registry
	exclude map[string]bool
}

func (f *FilteredRegistry) Get(name string) (ports.Tool, error) {
	if f.exclude[name] {
		return nil, fmt.Errorf("tool not available: %s", name)
	}
	return f.parent.Get(name)
}

func (f *FilteredRegistry) List() []ports.ToolDefinition {
	all := f.parent.List()
	out := make([]ports.ToolDefinition, 0, len(all))
	for _, def := range all {
		if !f.exclude[def.Name] {
			out = append(out, def)
		}
	}
	return out
}

// wrap builds the approval -> retry(+circuit-breaker) -> id-propagation
// chain around a raw tool.
func (r *Registry) wrap(tool ports.Tool) ports.Tool {
	name := tool.Definition().Name
	wrapped := ports.Tool(&approvalTool{delegate: tool})
	wrapped = &retryingTool{
		delegate: wrapped,
		breaker:  r.breakers.Get("tool-" + name),
		retry:    r.retry,
	}
	wrapped = &idPropagatingTool{delegate: wrapped}
	return wrapped
}

// idPropagatingTool fills in CallID on the result when the delegate left it
// blank, so callers never have to special-case a missing echo.
type idPropagatingTool struct {
	delegate ports.Tool
}

func (w *idPropagatingTool) Definition() ports.ToolDefinition { return w.delegate.Definition() }

func (w *idPropagatingTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	result, err := w.delegate.Execute(ctx, call)
	if result.CallID == "" {
		result.CallID = call.ID
	}
	return result, err
}
