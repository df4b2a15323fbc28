package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/agentcore/agentcore/internal/scriptruntime"
	"github.com/agentcore/agentcore/internal/shared/logging"
	"github.com/agentcore/agentcore/internal/ui"
)

// workUnitSink implements scriptruntime.EventSink: it mirrors RunPlan's
// step-level callbacks onto a WorkUnit's Subtasks (index-aligned with the
// Plan's Steps, since both are built from the same TaskList in the same
// order) and forwards TaskStepStarted/Completed/Failed UI events, per
// spec.md §4.3 step 8 and §4.7. RunPlan invokes these callbacks from
// concurrently-running goroutines (one per ready step), so subtask
// mutation is guarded by a mutex.
type workUnitSink struct {
	ctx    context.Context
	taskID string
	sender ui.Sender
	wu     *taskdomain.WorkUnit
	logger *logging.Logger

	mu sync.Mutex
}

func newWorkUnitSink(ctx context.Context, taskID string, sender ui.Sender, wu *taskdomain.WorkUnit) *workUnitSink {
	return &workUnitSink{ctx: ctx, taskID: taskID, sender: sender, wu: wu, logger: logging.NewComponentLogger("executor")}
}

func (s *workUnitSink) StepStarted(taskID string, stepIndex int, step scriptruntime.StepSpec) {
	now := time.Now()
	s.mu.Lock()
	if stepIndex < len(s.wu.Subtasks) {
		s.wu.Subtasks[stepIndex].Status = taskdomain.SubtaskInProgress
		s.wu.Subtasks[stepIndex].StartedAt = &now
	}
	s.mu.Unlock()

	if err := s.sender.Send(s.ctx, ui.TaskStepStarted(taskID, fmt.Sprintf("%d", stepIndex), step.StepType, step.Description)); err != nil {
		s.logger.Debug("step started event dropped: %v", err)
	}
}

func (s *workUnitSink) StepCompleted(taskID string, stepIndex int, result ports.ToolResult) {
	now := time.Now()
	s.mu.Lock()
	if stepIndex < len(s.wu.Subtasks) {
		s.wu.Subtasks[stepIndex].Status = taskdomain.SubtaskCompleted
		s.wu.Subtasks[stepIndex].Result = result.Content
		s.wu.Subtasks[stepIndex].CompletedAt = &now
	}
	s.mu.Unlock()

	if err := s.sender.Send(s.ctx, ui.TaskStepCompleted(taskID, fmt.Sprintf("%d", stepIndex))); err != nil {
		s.logger.Debug("step completed event dropped: %v", err)
	}
}

func (s *workUnitSink) StepFailed(taskID string, stepIndex int, reason string) {
	now := time.Now()
	s.mu.Lock()
	if stepIndex < len(s.wu.Subtasks) {
		s.wu.Subtasks[stepIndex].Status = taskdomain.SubtaskFailed
		s.wu.Subtasks[stepIndex].Err = reason
		s.wu.Subtasks[stepIndex].CompletedAt = &now
	}
	s.mu.Unlock()

	if err := s.sender.Send(s.ctx, ui.TaskStepFailed(taskID, fmt.Sprintf("%d", stepIndex), reason)); err != nil {
		s.logger.Debug("step failed event dropped: %v", err)
	}
}
