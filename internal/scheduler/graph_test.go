package scheduler

import (
	"testing"

	"github.com/agentcore/agentcore/internal/domain/task"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
	"github.com/stretchr/testify/require"
)

func TestTaskGraph_ReadyTasksRespectsDependencies(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a"},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"a", "b"}},
	}
	g := NewTaskGraph(tasks)

	ready := g.ReadyTasks(map[string]bool{})
	require.Len(t, ready, 1)
	require.Equal(t, "a", ready[0].ID)

	ready = g.ReadyTasks(map[string]bool{"a": true})
	require.Len(t, ready, 1)
	require.Equal(t, "b", ready[0].ID)

	ready = g.ReadyTasks(map[string]bool{"a": true, "b": true})
	require.Len(t, ready, 1)
	require.Equal(t, "c", ready[0].ID)
}

func TestTaskGraph_HasCyclesDetectsCycle(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a", Dependencies: []string{"b"}},
		{ID: "b", Dependencies: []string{"a"}},
	}
	g := NewTaskGraph(tasks)
	require.True(t, g.HasCycles())

	var cycleErr *coreerrors.CyclicDependencyError
	require.ErrorAs(t, g.CycleCheck(), &cycleErr)
}

func TestTaskGraph_NoCyclesForDAG(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a"},
		{ID: "b", Dependencies: []string{"a"}},
	}
	g := NewTaskGraph(tasks)
	require.False(t, g.HasCycles())
	require.NoError(t, g.CycleCheck())
}

func TestConflictAwareTaskGraph_FiltersOverlappingFileSets(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a", Context: task.ContextRequirements{RequiredFiles: []string{"x.go"}}},
		{ID: "b", Context: task.ContextRequirements{RequiredFiles: []string{"x.go"}}},
		{ID: "c", Context: task.ContextRequirements{RequiredFiles: []string{"y.go"}}},
	}
	g := NewConflictAwareTaskGraph(tasks)

	ready := g.ReadyNonConflictingTasks(map[string]bool{}, map[string]bool{"a": true})
	ids := make([]string, 0, len(ready))
	for _, t := range ready {
		ids = append(ids, t.ID)
	}
	require.ElementsMatch(t, []string{"c"}, ids)
}
