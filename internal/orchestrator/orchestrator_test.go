package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	ctxdomain "github.com/agentcore/agentcore/internal/domain/context"
	"github.com/agentcore/agentcore/internal/domain/ports"
	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/shared/config"
	"github.com/agentcore/agentcore/internal/thread"
	"github.com/agentcore/agentcore/internal/ui"
)

type stubProvider struct{ name, text string }

func (p *stubProvider) Name() string                    { return p.name }
func (p *stubProvider) IsAvailable(context.Context) bool { return true }
func (p *stubProvider) Generate(context.Context, string, ctxdomain.Context) (taskdomain.Response, error) {
	return taskdomain.Response{Text: p.text, Confidence: 1}, nil
}
func (p *stubProvider) EstimateCost(ctxdomain.Context) float64 { return 0 }

func testConfig(t *testing.T, text string) Config {
	t.Helper()
	cfg := config.Default()
	cfg.Tiers.LocalEnabled = true
	return Config{
		Routing:       cfg,
		WorkspaceRoot: t.TempDir(),
		NewRawProvider: func(tier, model string) (ports.Provider, error) {
			return &stubProvider{name: model, text: text}, nil
		},
		MaxConcurrent: 2,
		ChannelBuffer: 32,
	}
}

func TestNew_RequiresRawProviderAndWorkspaceRoot(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)

	_, err = New(context.Background(), Config{NewRawProvider: func(string, string) (ports.Provider, error) { return nil, nil }})
	require.Error(t, err)
}

func TestRoutingOrchestrator_SubmitTasksRunsDirectResultToCompletion(t *testing.T) {
	script := "```json\n{\"statements\": [], \"return\": \"done\"}\n```"
	o, err := New(context.Background(), testConfig(t, script))
	require.NoError(t, err)

	results, err := o.SubmitTasks(context.Background(), []*taskdomain.Task{
		{ID: "t1", Description: "say hi"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Equal(t, "done", results[0].Response.Text)

	o.Close()
	var sawStarted, sawCompleted bool
	for ev := range o.Events() {
		switch ev.Kind {
		case ui.EventTaskStarted:
			sawStarted = true
		case ui.EventTaskCompleted:
			sawCompleted = true
		}
	}
	require.True(t, sawStarted)
	require.True(t, sawCompleted)
}

func TestRoutingOrchestrator_ThreadsAreIndependentOfSubmission(t *testing.T) {
	script := "```json\n{\"statements\": [], \"return\": \"done\"}\n```"
	o, err := New(context.Background(), testConfig(t, script))
	require.NoError(t, err)

	th := o.Threads().CreateThread("demo")
	th.AppendMessage(thread.Message{Content: "hello"})

	got, ok := o.Threads().GetThread(th.ID)
	require.True(t, ok)
	require.Len(t, got.Messages(), 1)
}
