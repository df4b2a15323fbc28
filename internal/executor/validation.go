package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/agentcore/agentcore/internal/domain/ports"
	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
)

// ValidationPipeline runs stages in order and aggregates their outcomes per
// spec.md §4.9: score is the product of every stage's score, passed is the
// conjunction of every stage's passed flag. When earlyExit is set, the
// remainder of the pipeline is skipped after the first failing stage.
type ValidationPipeline struct {
	stages    []ports.Validator
	earlyExit bool
}

// NewValidationPipeline builds a pipeline over stages, run in the given
// order.
func NewValidationPipeline(earlyExit bool, stages ...ports.Validator) *ValidationPipeline {
	return &ValidationPipeline{stages: stages, earlyExit: earlyExit}
}

// Run executes every stage against resp/t and aggregates the result.
func (p *ValidationPipeline) Run(ctx context.Context, resp taskdomain.Response, t *taskdomain.Task) taskdomain.ValidationResult {
	result := taskdomain.ValidationResult{Score: 1.0, Passed: true}

	for _, stage := range p.stages {
		stageResult, err := stage.Validate(ctx, resp, t)
		if err != nil {
			stageResult = taskdomain.StageResult{Stage: stage.Name(), Passed: false, Details: err.Error()}
		}
		result.Stages = append(result.Stages, stageResult)
		result.Score *= stageResult.Score

		if !stageResult.Passed {
			result.Passed = false
			result.Errors = append(result.Errors, taskdomain.ValidationError{
				Stage:    stageResult.Stage,
				Message:  stageResult.Details,
				Severity: taskdomain.SeverityError,
			})
			if p.earlyExit {
				break
			}
		}
	}
	return result
}

// SyntaxStage is the pipeline's always-on default stage: it only checks that
// a response was produced at all, per spec.md §4.9's "default stages:
// syntax-only" — deeper inspection belongs to the opt-in build/test/lint
// stages.
type SyntaxStage struct{}

func (SyntaxStage) Name() string { return "syntax" }

func (SyntaxStage) Validate(_ context.Context, resp taskdomain.Response, _ *taskdomain.Task) (taskdomain.StageResult, error) {
	start := time.Now()
	passed := strings.TrimSpace(resp.Text) != ""
	details := "response text present"
	score := 1.0
	if !passed {
		details = "response text is empty"
		score = 0
	}
	return taskdomain.StageResult{
		Stage:      "syntax",
		Passed:     passed,
		DurationMS: time.Since(start).Milliseconds(),
		Details:    details,
		Score:      score,
	}, nil
}

// CommandStage is an opt-in validation stage (build/test/lint) that runs an
// external command inside a temporary materialized copy of the task's
// workspace, so a failing or side-effecting command never touches
// authoritative state, per spec.md §4.9. A task with no open workspace (a
// DirectResult that never touched a file) trivially passes.
type CommandStage struct {
	name       string
	command    []string
	workspaces *workspaceRegistry
	timeout    time.Duration
}

// NewBuildStage wires an opt-in "build" stage.
func NewBuildStage(workspaces *workspaceRegistry, command []string, timeout time.Duration) *CommandStage {
	return &CommandStage{name: "build", command: command, workspaces: workspaces, timeout: timeout}
}

// NewTestStage wires an opt-in "test" stage.
func NewTestStage(workspaces *workspaceRegistry, command []string, timeout time.Duration) *CommandStage {
	return &CommandStage{name: "test", command: command, workspaces: workspaces, timeout: timeout}
}

// NewLintStage wires an opt-in "lint" stage.
func NewLintStage(workspaces *workspaceRegistry, command []string, timeout time.Duration) *CommandStage {
	return &CommandStage{name: "lint", command: command, workspaces: workspaces, timeout: timeout}
}

func (s *CommandStage) Name() string { return s.name }

func (s *CommandStage) Validate(ctx context.Context, _ taskdomain.Response, t *taskdomain.Task) (taskdomain.StageResult, error) {
	start := time.Now()

	ws, ok := s.workspaces.Workspace(t.ID)
	if !ok {
		return taskdomain.StageResult{
			Stage: s.name, Passed: true, Score: 1.0,
			DurationMS: time.Since(start).Milliseconds(),
			Details:    "no workspace open for this task; stage skipped",
		}, nil
	}

	dir, err := os.MkdirTemp("", "agentcore-validate-"+s.name+"-")
	if err != nil {
		return taskdomain.StageResult{}, err
	}
	defer os.RemoveAll(dir)

	if err := ws.Materialize(dir); err != nil {
		return taskdomain.StageResult{}, err
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, s.command[0], s.command[1:]...)
	cmd.Dir = dir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()
	passed := runErr == nil
	score := 1.0
	if !passed {
		score = 0
	}
	return taskdomain.StageResult{
		Stage:      s.name,
		Passed:     passed,
		DurationMS: time.Since(start).Milliseconds(),
		Details:    output.String(),
		Score:      score,
	}, nil
}
