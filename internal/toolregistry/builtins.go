package toolregistry

// BuiltinsConfig supplies the collaborators the closed host-tool set needs.
// SubagentCoordinator may be nil if registered later, via RegisterSubagent
// (e.g. once the router that backs it exists).
type BuiltinsConfig struct {
	Workspaces  WorkspaceProvider
	Searcher    ContextSearcher
	Supplement  SupplementalContextStore
	Coordinator SubagentCoordinator
}

// RegisterBuiltins installs the closed host-tool set: bash,
// readFile/writeFile/editFile, listFiles, requestContext, and — when a
// coordinator is supplied — subagent.
func (r *Registry) RegisterBuiltins(config BuiltinsConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registerStatic(NewBashTool())
	r.registerStatic(NewReadFileTool(config.Workspaces))
	r.registerStatic(NewWriteFileTool(config.Workspaces))
	r.registerStatic(NewEditFileTool(config.Workspaces))
	r.registerStatic(NewListFilesTool(config.Workspaces))
	r.registerStatic(NewRequestContextTool(config.Searcher, config.Supplement))

	if config.Coordinator != nil {
		r.registerStatic(NewSubagentTool(config.Coordinator))
	}
}

// RegisterSubagent installs the subagent tool after construction, once a
// coordinator (the router/orchestrator façade) becomes available.
func (r *Registry) RegisterSubagent(coordinator SubagentCoordinator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.static["subagent"]; exists {
		return
	}
	r.registerStatic(NewSubagentTool(coordinator))
}
