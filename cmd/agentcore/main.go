// Command agentcore is the demo entrypoint wiring the RoutingOrchestrator
// façade: submit a task description from the command line, drain its UI
// events to stderr, and print the final response to stdout. No CLI
// framework — flag is the whole parsing surface.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/agentcore/internal/domain/ports"
	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/orchestrator"
	"github.com/agentcore/agentcore/internal/scriptruntime"
	"github.com/agentcore/agentcore/internal/shared/config"
	"github.com/agentcore/agentcore/internal/thread"
)

func main() {
	if os.Getenv(scriptruntime.ScriptHostEnv) != "" {
		if err := runScriptHost(); err != nil {
			fmt.Fprintln(os.Stderr, "script host:", err)
			os.Exit(1)
		}
		return
	}

	workspaceRoot := flag.String("workspace", ".", "workspace root to index and operate over")
	configPath := flag.String("config", "", "optional routing config file (yaml/json/toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if !cfg.Tiers.LocalEnabled && !cfg.Tiers.HostedEnabled && !cfg.Tiers.PremiumEnabled {
		cfg.Tiers.LocalEnabled = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	core, err := orchestrator.New(ctx, orchestrator.Config{
		Routing:       cfg,
		WorkspaceRoot: *workspaceRoot,
		NewRawProvider: func(tier, model string) (ports.Provider, error) {
			return &localEchoProvider{name: model}, nil
		},
		MaxConcurrent: cfg.MaxConcurrent,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "initialize orchestrator:", err)
		os.Exit(1)
	}

	description := strings.Join(flag.Args(), " ")
	if description == "" {
		fmt.Fprint(os.Stderr, "task> ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			description = scanner.Text()
		}
	}
	if description == "" {
		fmt.Fprintln(os.Stderr, "no task description given")
		os.Exit(1)
	}

	conversation := core.Threads().CreateThread("cli")
	t := &taskdomain.Task{ID: uuid.NewString(), Description: description, ThreadID: conversation.ID, CreatedAt: time.Now()}
	conversation.AppendMessage(thread.Message{
		ID: uuid.NewString(), Role: thread.RoleUser, Content: description, CreatedAt: t.CreatedAt, TaskID: t.ID,
	})

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range core.Events() {
			printEvent(ev)
		}
	}()

	results, err := core.SubmitTasks(ctx, []*taskdomain.Task{t})
	core.Close()
	<-drained
	if err != nil {
		fmt.Fprintln(os.Stderr, "submit task:", err)
		os.Exit(1)
	}

	exitCode := 0
	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintln(os.Stderr, "task failed:", result.Err)
			exitCode = 1
			continue
		}
		conversation.AttachWorkUnit(result.TaskID, result.WorkUnit)
		fmt.Println(result.Response.Text)
	}
	os.Exit(exitCode)
}
