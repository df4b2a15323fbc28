package toolregistry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/agentcore/agentcore/internal/workspace"
)

// WorkspaceProvider resolves the TaskWorkspace a tool call should operate
// against, keyed by the call's TaskID. File-op host tools route through it
// rather than touching the filesystem directly, per spec.md §4.4/§4.5.
type WorkspaceProvider interface {
	Workspace(taskID string) (*workspace.TaskWorkspace, bool)
}

func resolveWorkspace(provider WorkspaceProvider, call ports.ToolCall) (*workspace.TaskWorkspace, string) {
	ws, ok := provider.Workspace(call.TaskID)
	if !ok {
		return nil, fmt.Sprintf("no active workspace for task %q", call.TaskID)
	}
	return ws, ""
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// ReadFileTool reads a path through the enclosing TaskWorkspace, seeing its
// pending overlay before falling back to the committed snapshot.
type ReadFileTool struct{ workspaces WorkspaceProvider }

func NewReadFileTool(workspaces WorkspaceProvider) *ReadFileTool {
	return &ReadFileTool{workspaces: workspaces}
}

func (t *ReadFileTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "readFile",
		Description: "Read a file's content through the task's workspace.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []string{"path"},
		},
		Safety: ports.SafetyReadOnly,
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	path := stringArg(call.Arguments, "path")
	if path == "" {
		return ports.ToolResult{CallID: call.ID, Error: "readFile: missing required argument \"path\""}, nil
	}
	ws, errMsg := resolveWorkspace(t.workspaces, call)
	if errMsg != "" {
		return ports.ToolResult{CallID: call.ID, Error: errMsg}, nil
	}
	content, ok := ws.ReadFile(path)
	if !ok {
		return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("readFile: %s does not exist", path)}, nil
	}
	return ports.ToolResult{CallID: call.ID, Content: content}, nil
}

// WriteFileTool overwrites (or creates) a file inside the task's workspace.
type WriteFileTool struct{ workspaces WorkspaceProvider }

func NewWriteFileTool(workspaces WorkspaceProvider) *WriteFileTool {
	return &WriteFileTool{workspaces: workspaces}
}

func (t *WriteFileTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "writeFile",
		Description: "Create or overwrite a file inside the task's workspace.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string"},
				"content": map[string]any{"type": "string"},
			},
			"required": []string{"path", "content"},
		},
		Dangerous: true,
		Safety:    ports.SafetyReversible,
	}
}

func (t *WriteFileTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	path := stringArg(call.Arguments, "path")
	if path == "" {
		return ports.ToolResult{CallID: call.ID, Error: "writeFile: missing required argument \"path\""}, nil
	}
	content := stringArg(call.Arguments, "content")
	ws, errMsg := resolveWorkspace(t.workspaces, call)
	if errMsg != "" {
		return ports.ToolResult{CallID: call.ID, Error: errMsg}, nil
	}
	if _, exists := ws.ReadFile(path); exists {
		ws.ModifyFile(path, content)
	} else {
		ws.CreateFile(path, content)
	}
	return ports.ToolResult{CallID: call.ID, Content: fmt.Sprintf("wrote %d bytes to %s", len(content), path)}, nil
}

// EditFileTool replaces occurrences of old_string with new_string within an
// existing file, staged in the task's workspace.
type EditFileTool struct{ workspaces WorkspaceProvider }

func NewEditFileTool(workspaces WorkspaceProvider) *EditFileTool {
	return &EditFileTool{workspaces: workspaces}
}

func (t *EditFileTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "editFile",
		Description: "Replace old_string with new_string in a file inside the task's workspace.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":        map[string]any{"type": "string"},
				"old_string":  map[string]any{"type": "string"},
				"new_string":  map[string]any{"type": "string"},
				"replace_all": map[string]any{"type": "boolean"},
			},
			"required": []string{"path", "old_string", "new_string"},
		},
		Dangerous: true,
		Safety:    ports.SafetyReversible,
	}
}

func (t *EditFileTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	path := stringArg(call.Arguments, "path")
	if path == "" {
		return ports.ToolResult{CallID: call.ID, Error: "editFile: missing required argument \"path\""}, nil
	}
	oldString := stringArg(call.Arguments, "old_string")
	newString := stringArg(call.Arguments, "new_string")
	replaceAll := boolArg(call.Arguments, "replace_all")

	ws, errMsg := resolveWorkspace(t.workspaces, call)
	if errMsg != "" {
		return ports.ToolResult{CallID: call.ID, Error: errMsg}, nil
	}

	current, exists := ws.ReadFile(path)
	if !exists {
		if oldString != "" {
			return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("editFile: %s does not exist", path)}, nil
		}
		ws.CreateFile(path, newString)
		return ports.ToolResult{CallID: call.ID, Content: fmt.Sprintf("created %s", path)}, nil
	}

	if oldString == "" {
		return ports.ToolResult{CallID: call.ID, Error: "editFile: old_string must be non-empty when editing an existing file"}, nil
	}
	count := strings.Count(current, oldString)
	if count == 0 {
		return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("editFile: old_string not found in %s", path)}, nil
	}
	if count > 1 && !replaceAll {
		return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("editFile: old_string matches %d times in %s; pass replace_all to replace them all", count, path)}, nil
	}

	var updated string
	if replaceAll {
		updated = strings.ReplaceAll(current, oldString, newString)
	} else {
		updated = strings.Replace(current, oldString, newString, 1)
	}
	ws.ModifyFile(path, updated)
	return ports.ToolResult{CallID: call.ID, Content: fmt.Sprintf("replaced %d occurrence(s) in %s", count, path)}, nil
}

// ListFilesTool lists the contents of a directory under the workspace root.
// It reads the committed filesystem directly (listings reflect the last
// commit, not in-flight pending changes in other tasks' workspaces).
type ListFilesTool struct{ workspaces WorkspaceProvider }

func NewListFilesTool(workspaces WorkspaceProvider) *ListFilesTool {
	return &ListFilesTool{workspaces: workspaces}
}

func (t *ListFilesTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "listFiles",
		Description: "List files and directories under a path inside the task's workspace root.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"dir":            map[string]any{"type": "string"},
				"include_hidden": map[string]any{"type": "boolean"},
			},
			"required": []string{"dir"},
		},
		Safety: ports.SafetyReadOnly,
	}
}

func (t *ListFilesTool) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	dir := stringArg(call.Arguments, "dir")
	if dir == "" {
		dir = "."
	}
	includeHidden := boolArg(call.Arguments, "include_hidden")

	ws, errMsg := resolveWorkspace(t.workspaces, call)
	if errMsg != "" {
		return ports.ToolResult{CallID: call.ID, Error: errMsg}, nil
	}

	absDir := dir
	if !filepath.IsAbs(absDir) {
		absDir = filepath.Join(ws.Root(), dir)
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return ports.ToolResult{CallID: call.ID, Error: fmt.Sprintf("listFiles: %v", err)}, nil
	}

	var files, directories []string
	for _, e := range entries {
		if !includeHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			directories = append(directories, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	sort.Strings(directories)

	return ports.ToolResult{
		CallID: call.ID,
		Metadata: map[string]any{
			"files":       files,
			"directories": directories,
		},
	}, nil
}
