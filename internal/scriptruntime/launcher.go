package scriptruntime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ScriptHostEnv is set in the child's environment to select re-exec mode.
// cmd/agentcore checks for it before falling through to its normal CLI
// entrypoint.
const ScriptHostEnv = "AGENTCORE_SCRIPT_HOST"

// Launcher spawns agentcore-script-host as a subprocess of the current
// binary (a re-exec of os.Args[0], per SPEC_FULL.md's embedding-strategy
// resolution) and speaks JSON-RPC to it over stdio via RPCConn.
type Launcher struct {
	cmd  *exec.Cmd
	conn *RPCConn
}

// Launch starts the subprocess. The caller owns the returned Launcher's
// lifetime and must call Close when done.
func Launch(ctx context.Context) (*Launcher, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve self executable for script host: %w", err)
	}

	cmd := exec.CommandContext(ctx, self)
	cmd.Env = append(os.Environ(), ScriptHostEnv+"=1")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("script host stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("script host stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start script host: %w", err)
	}

	return &Launcher{cmd: cmd, conn: NewRPCConn(stdout, stdin)}, nil
}

// Execute asks the subprocess to run a script and decodes its Plan/value
// result.
func (l *Launcher) Execute(ctx context.Context, taskID, source string) (*ExecutionResult, error) {
	resp, err := l.conn.Call(ctx, "script.execute", map[string]any{"task_id": taskID, "source": source})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, resp.Error
	}

	encoded, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("re-encode script host result: %w", err)
	}
	var decoded struct {
		Value any   `json:"value"`
		Plan  *Plan `json:"plan"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, fmt.Errorf("decode script host result: %w", err)
	}
	return &ExecutionResult{Value: decoded.Value, Plan: decoded.Plan}, nil
}

// Close terminates the subprocess.
func (l *Launcher) Close() error {
	if l.cmd.Process != nil {
		_ = l.cmd.Process.Kill()
	}
	return l.cmd.Wait()
}

var _ io.Closer = (*Launcher)(nil)
