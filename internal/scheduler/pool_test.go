package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/ui"
	"github.com/stretchr/testify/require"
)

type stubRunner struct{}

func (stubRunner) Run(ctx context.Context, t *task.Task, sender ui.Sender) task.TaskResult {
	_ = sender.Send(ctx, ui.TaskStarted(t.ID, t.Description, "", ""))
	_ = sender.Send(ctx, ui.TaskCompleted(t.ID, nil))
	return task.TaskResult{TaskID: t.ID}
}

func TestExecutorPool_ExecuteGraphRunsAllTasksInDependencyOrder(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a"},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"a"}},
	}
	graph := NewTaskGraph(tasks)
	channel := ui.NewChannel(32)
	poolUnderTest := NewExecutorPool(func() TaskRunner { return stubRunner{} }, channel, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := poolUnderTest.ExecuteGraph(ctx, graph)
	require.NoError(t, err)
	require.Len(t, results, 3)
}

func TestExecutorPool_ExecuteGraphDetectsCycleUpFront(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a", Dependencies: []string{"b"}},
		{ID: "b", Dependencies: []string{"a"}},
	}
	graph := NewTaskGraph(tasks)
	channel := ui.NewChannel(8)
	poolUnderTest := NewExecutorPool(func() TaskRunner { return stubRunner{} }, channel, 2)

	_, err := poolUnderTest.ExecuteGraph(context.Background(), graph)
	require.Error(t, err)
}

type blockingRunner struct {
	mu      sync.Mutex
	running int
	maxSeen int
	release chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context, t *task.Task, sender ui.Sender) task.TaskResult {
	r.mu.Lock()
	r.running++
	if r.running > r.maxSeen {
		r.maxSeen = r.running
	}
	r.mu.Unlock()

	<-r.release

	r.mu.Lock()
	r.running--
	r.mu.Unlock()
	return task.TaskResult{TaskID: t.ID}
}

func TestExecutorPool_RespectsMaxConcurrent(t *testing.T) {
	tasks := []*task.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	graph := NewTaskGraph(tasks)
	channel := ui.NewChannel(32)

	runner := &blockingRunner{release: make(chan struct{})}
	poolUnderTest := NewExecutorPool(func() TaskRunner { return runner }, channel, 2)

	done := make(chan struct{})
	go func() {
		_, _ = poolUnderTest.ExecuteGraph(context.Background(), graph)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	close(runner.release)
	<-done

	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.LessOrEqual(t, runner.maxSeen, 2)
}

func TestConflictAwareExecutorPool_BlockedTaskRunsAfterConflictingTaskFinishes(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a", Context: task.ContextRequirements{RequiredFiles: []string{"x.go"}}},
		{ID: "b", Context: task.ContextRequirements{RequiredFiles: []string{"x.go"}}},
	}
	graph := NewConflictAwareTaskGraph(tasks)
	channel := ui.NewChannel(32)
	poolUnderTest := NewExecutorPool(func() TaskRunner { return stubRunner{} }, channel, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := poolUnderTest.ExecuteConflictAwareGraph(ctx, graph)
	require.NoError(t, err)
	require.Len(t, results, 2)
}
