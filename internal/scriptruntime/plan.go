package scriptruntime

import (
	"context"
	"fmt"

	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
	"github.com/agentcore/agentcore/internal/domain/ports"
	"golang.org/x/sync/errgroup"
)

// RunPlan walks a bulk-extracted Plan to completion: steps with no
// remaining unmet Dependencies run concurrently as a ready batch, mirroring
// spec.md §4.4's "in parallel where declared dependencies form a DAG". A
// step's ExitRequirement, when present, is invoked as its body; its result
// decides TaskStepCompleted vs TaskStepFailed. A step with no
// ExitRequirement completes as soon as its dependencies are satisfied.
//
// RunPlan reports a CyclicDependencyError naming the unrun steps as soon as
// a round finds no ready step (a dependency cycle, or a dependency naming no
// step in the plan). Steps that became ready in earlier rounds have already
// run by then.
func (r *Runtime) RunPlan(ctx context.Context, taskID string, plan *Plan, sink EventSink) error {
	if sink == nil {
		sink = noopSink{}
	}
	if len(plan.Steps) == 0 {
		return nil
	}

	byTitle := make(map[string]int, len(plan.Steps))
	for i, step := range plan.Steps {
		byTitle[step.Title] = i
	}

	done := make([]bool, len(plan.Steps))
	failed := false

	remaining := len(plan.Steps)
	for remaining > 0 {
		ready := readySteps(plan.Steps, byTitle, done)
		if len(ready) == 0 {
			return &coreerrors.CyclicDependencyError{TaskIDs: unmetStepTitles(plan.Steps, done)}
		}

		group, gctx := errgroup.WithContext(ctx)
		for _, idx := range ready {
			idx := idx
			step := plan.Steps[idx]
			group.Go(func() error {
				sink.StepStarted(taskID, idx, step)
				result, stepErr := r.runStep(gctx, taskID, step)
				if stepErr != nil {
					sink.StepFailed(taskID, idx, stepErr.Error())
					return stepErr
				}
				if result != nil && result.Error != "" {
					sink.StepFailed(taskID, idx, result.Error)
					return &coreerrors.ExecutionFailedError{Message: fmt.Sprintf("step %q exit requirement failed", step.Title)}
				}
				if result != nil {
					sink.StepCompleted(taskID, idx, *result)
				} else {
					sink.StepCompleted(taskID, idx, ports.ToolResult{})
				}
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			failed = true
		}
		for _, idx := range ready {
			done[idx] = true
		}
		remaining -= len(ready)
		if failed {
			return &coreerrors.ExecutionFailedError{Message: "plan step failed; remaining steps not run"}
		}
	}
	return nil
}

func (r *Runtime) runStep(ctx context.Context, taskID string, step StepSpec) (*ports.ToolResult, error) {
	if step.ExitRequirement == nil {
		return nil, nil
	}
	tool, err := r.tools.Get(step.ExitRequirement.Tool)
	if err != nil {
		return nil, err
	}
	result, err := tool.Execute(ctx, toolCallFor(taskID, step.ExitRequirement.Tool, step.ExitRequirement.Args))
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func readySteps(steps []StepSpec, byTitle map[string]int, done []bool) []int {
	var ready []int
	for i, step := range steps {
		if done[i] {
			continue
		}
		satisfied := true
		for _, dep := range step.Dependencies {
			depIdx, ok := byTitle[dep]
			if !ok || !done[depIdx] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, i)
		}
	}
	return ready
}

func unmetStepTitles(steps []StepSpec, done []bool) []string {
	var titles []string
	for i, step := range steps {
		if !done[i] {
			titles = append(titles, step.Title)
		}
	}
	return titles
}
