package toolregistry

import (
	"context"
	"encoding/json"
	"fmt"

	ctxdomain "github.com/agentcore/agentcore/internal/domain/context"
	"github.com/agentcore/agentcore/internal/domain/ports"
)

// ContextSearcher resolves pattern against the indexed workspace, returning
// up to maxFiles matches. Backed by contextengine.ContextIndex.Search in
// production, which runs pattern as a relevance query, not as a glob.
type ContextSearcher interface {
	SearchFiles(ctx context.Context, pattern string, maxFiles int) ([]ctxdomain.FileContext, error)
}

// SupplementalContextStore records requestContext's additions so every
// later ContextBuilder.Build call within the same task sees them, per
// SPEC_FULL.md's requestContext-persistence resolution.
type SupplementalContextStore interface {
	AppendSupplemental(taskID, reason string, files []ctxdomain.FileContext)
}

const defaultRequestContextMaxFiles = 10

// RequestContextTool lets the model pull additional context chunks into the
// task's working set mid-execution.
type RequestContextTool struct {
	searcher ContextSearcher
	store    SupplementalContextStore
}

func NewRequestContextTool(searcher ContextSearcher, store SupplementalContextStore) *RequestContextTool {
	return &RequestContextTool{searcher: searcher, store: store}
}

func (t *RequestContextTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "requestContext",
		Description: "Pull additional context chunks matching pattern into this task's working set.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern":   map[string]any{"type": "string"},
				"reason":    map[string]any{"type": "string"},
				"max_files": map[string]any{"type": "integer"},
			},
			"required": []string{"pattern", "reason"},
		},
		Safety: ports.SafetyReadOnly,
	}
}

func (t *RequestContextTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	pattern := stringArg(call.Arguments, "pattern")
	reason := stringArg(call.Arguments, "reason")
	if pattern == "" || reason == "" {
		return ports.ToolResult{CallID: call.ID, Error: "requestContext: pattern and reason are required"}, nil
	}
	maxFiles := defaultRequestContextMaxFiles
	if v, ok := call.Arguments["max_files"]; ok {
		if n, ok := toInt(v); ok && n > 0 {
			maxFiles = n
		}
	}

	files, err := t.searcher.SearchFiles(ctx, pattern, maxFiles)
	if err != nil {
		return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("requestContext: %v", err)}, nil
	}
	if t.store != nil && call.TaskID != "" {
		t.store.AppendSupplemental(call.TaskID, reason, files)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	content, _ := json.Marshal(map[string]any{"files": paths})
	return ports.ToolResult{CallID: call.ID, Content: string(content)}, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
