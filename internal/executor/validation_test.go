package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/workspace"
)

type stubValidator struct {
	name   string
	result taskdomain.StageResult
	err    error
}

func (s stubValidator) Name() string { return s.name }
func (s stubValidator) Validate(context.Context, taskdomain.Response, *taskdomain.Task) (taskdomain.StageResult, error) {
	return s.result, s.err
}

func TestValidationPipeline_AggregatesScoreAsProduct(t *testing.T) {
	p := NewValidationPipeline(false,
		stubValidator{name: "a", result: taskdomain.StageResult{Stage: "a", Passed: true, Score: 0.5}},
		stubValidator{name: "b", result: taskdomain.StageResult{Stage: "b", Passed: true, Score: 0.5}},
	)
	result := p.Run(context.Background(), taskdomain.Response{Text: "x"}, &taskdomain.Task{ID: "t1"})
	require.True(t, result.Passed)
	require.InDelta(t, 0.25, result.Score, 0.0001)
	require.Len(t, result.Stages, 2)
}

func TestValidationPipeline_EarlyExitSkipsRemainingStages(t *testing.T) {
	ran := false
	p := NewValidationPipeline(true,
		stubValidator{name: "a", result: taskdomain.StageResult{Stage: "a", Passed: false, Score: 0, Details: "boom"}},
		stubValidator{name: "b", result: taskdomain.StageResult{Stage: "b", Passed: true, Score: 1}},
	)
	result := p.Run(context.Background(), taskdomain.Response{Text: "x"}, &taskdomain.Task{ID: "t1"})
	require.False(t, ran)
	require.False(t, result.Passed)
	require.Len(t, result.Stages, 1)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "a", result.Errors[0].Stage)
}

func TestValidationPipeline_NoEarlyExitRunsEveryStage(t *testing.T) {
	p := NewValidationPipeline(false,
		stubValidator{name: "a", result: taskdomain.StageResult{Stage: "a", Passed: false, Score: 0}},
		stubValidator{name: "b", result: taskdomain.StageResult{Stage: "b", Passed: true, Score: 1}},
	)
	result := p.Run(context.Background(), taskdomain.Response{Text: "x"}, &taskdomain.Task{ID: "t1"})
	require.False(t, result.Passed)
	require.Len(t, result.Stages, 2)
}

func TestSyntaxStage_FailsOnEmptyResponseText(t *testing.T) {
	stage := SyntaxStage{}
	result, err := stage.Validate(context.Background(), taskdomain.Response{Text: "   "}, &taskdomain.Task{ID: "t1"})
	require.NoError(t, err)
	require.False(t, result.Passed)
	require.Equal(t, 0.0, result.Score)
}

func TestSyntaxStage_PassesOnNonEmptyResponseText(t *testing.T) {
	stage := SyntaxStage{}
	result, err := stage.Validate(context.Background(), taskdomain.Response{Text: "done"}, &taskdomain.Task{ID: "t1"})
	require.NoError(t, err)
	require.True(t, result.Passed)
}

func TestCommandStage_SkipsWhenNoWorkspaceOpenForTask(t *testing.T) {
	registry := newWorkspaceRegistry(workspace.NewWorkspaceState(t.TempDir()), workspace.NewFileLockManager())
	stage := NewBuildStage(registry, []string{"true"}, time.Second)

	result, err := stage.Validate(context.Background(), taskdomain.Response{Text: "x"}, &taskdomain.Task{ID: "no-such-task"})
	require.NoError(t, err)
	require.True(t, result.Passed)
}

func TestCommandStage_PassesWhenCommandExitsZero(t *testing.T) {
	global := workspace.NewWorkspaceState(t.TempDir())
	locks := workspace.NewFileLockManager()
	registry := newWorkspaceRegistry(global, locks)
	_, err := registry.Open("task-1", nil)
	require.NoError(t, err)

	stage := NewTestStage(registry, []string{"true"}, time.Second)
	result, err := stage.Validate(context.Background(), taskdomain.Response{Text: "x"}, &taskdomain.Task{ID: "task-1"})
	require.NoError(t, err)
	require.True(t, result.Passed)
	require.Equal(t, 1.0, result.Score)
}

func TestCommandStage_FailsWhenCommandExitsNonZero(t *testing.T) {
	global := workspace.NewWorkspaceState(t.TempDir())
	locks := workspace.NewFileLockManager()
	registry := newWorkspaceRegistry(global, locks)
	_, err := registry.Open("task-1", nil)
	require.NoError(t, err)

	stage := NewLintStage(registry, []string{"false"}, time.Second)
	result, err := stage.Validate(context.Background(), taskdomain.Response{Text: "x"}, &taskdomain.Task{ID: "task-1"})
	require.NoError(t, err)
	require.False(t, result.Passed)
	require.Equal(t, 0.0, result.Score)
}
