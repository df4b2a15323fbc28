package executor

import (
	"fmt"
	"sync"

	"github.com/agentcore/agentcore/internal/workspace"
)

// workspaceRegistry is the shared WorkspaceProvider every AgentExecutor
// spawned for a given run is constructed against: one authoritative
// WorkspaceState and FileLockManager, with each task's TaskWorkspace opened
// on demand and tracked by task ID, per spec.md §4.5/§4.6.
type workspaceRegistry struct {
	global *workspace.WorkspaceState
	locks  *workspace.FileLockManager

	mu     sync.Mutex
	active map[string]*workspace.TaskWorkspace
}

func newWorkspaceRegistry(global *workspace.WorkspaceState, locks *workspace.FileLockManager) *workspaceRegistry {
	return &workspaceRegistry{global: global, locks: locks, active: make(map[string]*workspace.TaskWorkspace)}
}

// Open acquires write locks on files and registers the resulting
// TaskWorkspace under taskID, replacing any workspace already registered
// under that ID. Close removes the entry.
func (r *workspaceRegistry) Open(taskID string, files []string) (*workspace.TaskWorkspace, error) {
	ws, err := workspace.NewTaskWorkspace(taskID, files, r.global, r.locks)
	if err != nil {
		return nil, fmt.Errorf("open workspace for task %s: %w", taskID, err)
	}
	r.mu.Lock()
	r.active[taskID] = ws
	r.mu.Unlock()
	return ws, nil
}

// Workspace satisfies toolregistry.WorkspaceProvider: host tools resolve
// the workspace for a running tool call's TaskID through this method.
func (r *workspaceRegistry) Workspace(taskID string) (*workspace.TaskWorkspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.active[taskID]
	return ws, ok
}

// Close deregisters taskID's workspace. Callers must already have called
// Commit or Rollback on it to release its write locks; Close only drops the
// registry's bookkeeping entry.
func (r *workspaceRegistry) Close(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, taskID)
}
