package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agentcore/agentcore/internal/contextengine"
	"github.com/agentcore/agentcore/internal/executor"
	"github.com/agentcore/agentcore/internal/scriptruntime"
	"github.com/agentcore/agentcore/internal/toolregistry"
	"github.com/agentcore/agentcore/internal/workspace"
)

// runScriptHost is the agentcore-script-host side of the subprocess
// boundary: a fresh process, sharing no memory with whoever launched it,
// that speaks JSON-RPC over stdio (scriptruntime.Host) and evaluates
// scripts against a host-tool registry scoped to its own working
// directory. cmd/agentcore re-execs itself into this mode when
// scriptruntime.ScriptHostEnv is set in its environment.
func runScriptHost() error {
	ctx := context.Background()

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve script host working directory: %w", err)
	}

	global := workspace.NewWorkspaceState(root)
	locks := workspace.NewFileLockManager()
	workspaces := executor.NewWorkspaceRegistry(global, locks)

	index, err := contextengine.NewContextIndex(contextengine.ContextIndexConfig{WorkspaceRoot: root}, contextengine.NewHashEmbedder(64))
	if err != nil {
		return fmt.Errorf("build script host context index: %w", err)
	}
	if err := index.Build(ctx, nil); err != nil {
		return fmt.Errorf("index script host workspace: %w", err)
	}

	tools := toolregistry.New(toolregistry.Config{})
	tools.RegisterBuiltins(toolregistry.BuiltinsConfig{
		Workspaces: workspaces,
		Searcher:   executor.NewIndexSearcher(index),
		Supplement: executor.NewSupplementalStore(),
	})

	runtime := scriptruntime.New(tools, scriptruntime.Config{})
	conn := scriptruntime.NewRPCConn(os.Stdin, os.Stdout)
	host := scriptruntime.NewHost(conn, runtime)
	return host.Serve(ctx)
}
