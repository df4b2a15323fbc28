package executor

import (
	"github.com/agentcore/agentcore/internal/contextengine"
	"github.com/agentcore/agentcore/internal/routing"
	"github.com/agentcore/agentcore/internal/workspace"
)

// NewWorkspaceRegistry builds the toolregistry.WorkspaceProvider every
// AgentExecutor constructed for a run shares, and the same value a
// validation CommandStage resolves task workspaces through. Exported so a
// façade outside this package can wire one registry across both.
func NewWorkspaceRegistry(global *workspace.WorkspaceState, locks *workspace.FileLockManager) *workspaceRegistry {
	return newWorkspaceRegistry(global, locks)
}

// NewIndexSearcher adapts index into the toolregistry.ContextSearcher the
// requestContext host tool calls into.
func NewIndexSearcher(index *contextengine.ContextIndex) *indexSearcher {
	return newIndexSearcher(index)
}

// NewSupplementalStore builds the per-task requestContext accumulator
// shared between the requestContext tool and every AgentExecutor's
// generateWithContext call.
func NewSupplementalStore() *supplementalStore {
	return newSupplementalStore()
}

// NewSubagentCoordinator builds the toolregistry.SubagentCoordinator that
// backs the subagent host tool, recursing back into router/providers/
// builder rather than holding any workspace or tool access of its own.
func NewSubagentCoordinator(router *routing.Router, providers *routing.ProviderRegistry, builder *contextengine.ContextBuilder) *subagentCoordinator {
	return newSubagentCoordinator(router, providers, builder)
}
