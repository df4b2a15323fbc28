package scheduler

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/observability"
	"github.com/agentcore/agentcore/internal/shared/async"
	"github.com/agentcore/agentcore/internal/shared/logging"
	"github.com/agentcore/agentcore/internal/ui"
)

// TaskRunner executes a single Task to completion, streaming progress
// through sender. Satisfied by *executor.AgentExecutor.
type TaskRunner interface {
	Run(ctx context.Context, t *task.Task, sender ui.Sender) task.TaskResult
}

// ExecutorFactory builds one TaskRunner per scheduled task. Per spec.md
// §4.6, "each spawn constructs its own AgentExecutor (shared router +
// validator + registry)" — the shared collaborators are captured in the
// closure the caller provides; only per-task state (if any) is fresh.
type ExecutorFactory func() TaskRunner

// ExecutorPool drains a TaskGraph with bounded concurrency, built on
// github.com/sourcegraph/conc/pool rather than a hand-rolled
// semaphore+goroutine loop, per SPEC_FULL.md §4.6.
type ExecutorPool struct {
	newExecutor   ExecutorFactory
	channel       *ui.Channel
	maxConcurrent int
	logger        *logging.Logger
	metrics       *observability.MetricsCollector
}

// NewExecutorPool builds a pool that spawns up to maxConcurrent tasks at
// once, each through newExecutor, streaming events into channel.
func NewExecutorPool(newExecutor ExecutorFactory, channel *ui.Channel, maxConcurrent int) *ExecutorPool {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ExecutorPool{
		newExecutor:   newExecutor,
		channel:       channel,
		maxConcurrent: maxConcurrent,
		logger:        logging.NewComponentLogger("scheduler"),
	}
}

// SetMetrics attaches a MetricsCollector that every task this pool drains
// reports its completion and in-flight count to. Optional: a pool with no
// collector attached behaves exactly as before.
func (p *ExecutorPool) SetMetrics(metrics *observability.MetricsCollector) {
	p.metrics = metrics
}

type completion struct {
	taskID string
	result task.TaskResult
}

// ExecuteGraph drains graph to completion: spawns up to max_concurrent -
// in_flight ready tasks, awaits the next completion, marks it done, and
// repeats until the graph is empty. Cycles are detected up front.
func (p *ExecutorPool) ExecuteGraph(ctx context.Context, graph *TaskGraph) ([]task.TaskResult, error) {
	if err := graph.CycleCheck(); err != nil {
		return nil, err
	}

	total := graph.Len()
	completedSet := make(map[string]bool, total)
	runningSet := make(map[string]bool, total)
	results := make([]task.TaskResult, 0, total)
	completions := make(chan completion, total)

	workers := pool.New().WithMaxGoroutines(p.maxConcurrent)
	defer workers.Wait()

	readyFn := func() []*task.Task { return graph.ReadyTasks(completedSet) }

	for len(completedSet) < total {
		p.spawnReady(ctx, workers, readyFn, runningSet, completions)

		if len(runningSet) == 0 {
			return results, fmt.Errorf("scheduler stalled: %d task(s) neither ready nor running", total-len(completedSet))
		}

		done := <-completions
		delete(runningSet, done.taskID)
		completedSet[done.taskID] = true
		results = append(results, done.result)
	}

	return results, nil
}

// ExecuteConflictAwareGraph is ExecuteGraph with the additional file-conflict
// filter: the running set shrinks as tasks finish, so a previously blocked
// task becomes eligible on the next round.
func (p *ExecutorPool) ExecuteConflictAwareGraph(ctx context.Context, graph *ConflictAwareTaskGraph) ([]task.TaskResult, error) {
	if err := graph.CycleCheck(); err != nil {
		return nil, err
	}

	total := graph.Len()
	completedSet := make(map[string]bool, total)
	runningSet := make(map[string]bool, total)
	results := make([]task.TaskResult, 0, total)
	completions := make(chan completion, total)

	workers := pool.New().WithMaxGoroutines(p.maxConcurrent)
	defer workers.Wait()

	readyFn := func() []*task.Task { return graph.ReadyNonConflictingTasks(completedSet, runningSet) }

	for len(completedSet) < total {
		p.spawnReady(ctx, workers, readyFn, runningSet, completions)

		if len(runningSet) == 0 {
			return results, fmt.Errorf("scheduler stalled: %d task(s) blocked by file conflicts or dependencies", total-len(completedSet))
		}

		done := <-completions
		delete(runningSet, done.taskID)
		completedSet[done.taskID] = true
		results = append(results, done.result)
	}

	return results, nil
}

// spawnReady spawns as many ready tasks as capacity allows, re-invoking
// readyFn after each spawn rather than once up front. readyFn reads
// runningSet, which spawnReady mutates in place, so a just-spawned task's
// required files are locked out before the next readyFn call — this is what
// stops two mutually-conflicting tasks from launching in the same round.
func (p *ExecutorPool) spawnReady(ctx context.Context, workers *pool.Pool, readyFn func() []*task.Task, runningSet map[string]bool, completions chan<- completion) {
	for p.maxConcurrent-len(runningSet) > 0 {
		t := firstNotRunning(readyFn(), runningSet)
		if t == nil {
			return
		}
		runningSet[t.ID] = true

		sender := p.channel.Sender()
		runner := p.newExecutor()
		taskID := t.ID
		if p.metrics != nil {
			p.metrics.IncrementActiveTasks(ctx)
		}
		workers.Go(func() {
			result := p.runTask(ctx, runner, t, sender, taskID)
			if p.metrics != nil {
				p.metrics.DecrementActiveTasks(ctx)
				status := "completed"
				if result.Err != nil {
					status = "failed"
				}
				p.metrics.RecordTaskCompleted(ctx, status, result.DurationMS)
			}
			completions <- completion{taskID: taskID, result: result}
		})
	}
}

// runTask runs runner.Run behind async.Recover's panic boundary: a panic in
// a spawned task's pipeline is logged instead of crashing the process when
// the worker pool's Wait re-raises it, and the task surfaces as a normal
// failed TaskResult instead of taking the whole graph down with it.
func (p *ExecutorPool) runTask(ctx context.Context, runner TaskRunner, t *task.Task, sender ui.Sender, taskID string) (result task.TaskResult) {
	func() {
		defer async.Recover(p.logger, "scheduler task "+taskID)
		result = runner.Run(ctx, t, sender)
	}()
	if result.TaskID == "" {
		result = task.TaskResult{TaskID: taskID, Err: fmt.Errorf("task %s panicked during execution", taskID)}
	}
	return result
}

func firstNotRunning(ready []*task.Task, runningSet map[string]bool) *task.Task {
	for _, t := range ready {
		if !runningSet[t.ID] {
			return t
		}
	}
	return nil
}
