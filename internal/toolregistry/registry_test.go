package toolregistry

import (
	"context"
	"testing"

	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	def ports.ToolDefinition
}

func (s *stubTool) Definition() ports.ToolDefinition { return s.def }

func (s *stubTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	return ports.ToolResult{CallID: call.ID, Content: "ok"}, nil
}

func TestRegistry_GetResolvesAcrossTiers(t *testing.T) {
	r := New(Config{})
	r.registerStatic(&stubTool{def: ports.ToolDefinition{Name: "static-tool"}})
	require.NoError(t, r.Register(&stubTool{def: ports.ToolDefinition{Name: "dynamic-tool"}}))
	require.NoError(t, r.Register(&stubTool{def: ports.ToolDefinition{Name: "mcp__remote-tool"}}))

	for _, name := range []string{"static-tool", "dynamic-tool", "mcp__remote-tool"} {
		_, err := r.Get(name)
		require.NoError(t, err, name)
	}
}

func TestRegistry_RegisterRejectsDuplicateOfStatic(t *testing.T) {
	r := New(Config{})
	r.registerStatic(&stubTool{def: ports.ToolDefinition{Name: "dup"}})
	err := r.Register(&stubTool{def: ports.ToolDefinition{Name: "dup"}})
	require.Error(t, err)
}

func TestRegistry_UnregisterRefusesStaticTools(t *testing.T) {
	r := New(Config{})
	r.registerStatic(&stubTool{def: ports.ToolDefinition{Name: "builtin"}})
	err := r.Unregister("builtin")
	require.Error(t, err)
}

func TestRegistry_ListIsSortedAndCached(t *testing.T) {
	r := New(Config{})
	r.registerStatic(&stubTool{def: ports.ToolDefinition{Name: "zeta"}})
	r.registerStatic(&stubTool{def: ports.ToolDefinition{Name: "alpha"}})

	defs := r.List()
	require.Len(t, defs, 2)
	require.Equal(t, "alpha", defs[0].Name)
	require.Equal(t, "zeta", defs[1].Name)

	// A second List with no Register/Unregister in between returns the
	// cached slice itself.
	require.Same(t, &defs[0], &r.List()[0])
}

func TestRegistry_WithoutSubagentHidesTool(t *testing.T) {
	r := New(Config{})
	r.registerStatic(&stubTool{def: ports.ToolDefinition{Name: "subagent"}})
	r.registerStatic(&stubTool{def: ports.ToolDefinition{Name: "bash"}})

	filtered := r.WithoutSubagent()
	_, err := filtered.Get("subagent")
	require.Error(t, err)
	_, err = filtered.Get("bash")
	require.NoError(t, err)

	names := make([]string, 0)
	for _, d := range filtered.List() {
		names = append(names, d.Name)
	}
	require.NotContains(t, names, "subagent")
}

func TestRegistry_ExecuteThroughWrappingChainPropagatesCallID(t *testing.T) {
	r := New(Config{})
	r.registerStatic(&stubTool{def: ports.ToolDefinition{Name: "echo"}})

	tool, err := r.Get("echo")
	require.NoError(t, err)

	result, err := tool.Execute(context.Background(), ports.ToolCall{ID: "call-42", Name: "echo"})
	require.NoError(t, err)
	require.Equal(t, "call-42", result.CallID)
	require.Equal(t, "ok", result.Content)
}
