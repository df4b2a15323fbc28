// Package scheduler implements TaskGraph/ConflictAwareTaskGraph dependency
// tracking and the ExecutorPool that drains them, per spec.md §4.6, built
// around the general retry/bounded-concurrency idiom (see DESIGN.md).
package scheduler

import (
	"github.com/agentcore/agentcore/internal/domain/task"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
)

// TaskGraph tracks a set of Tasks and their Dependencies edges.
type TaskGraph struct {
	tasks map[string]*task.Task
	order []string // insertion order, for deterministic iteration
}

// NewTaskGraph builds a graph from tasks, indexed by ID.
func NewTaskGraph(tasks []*task.Task) *TaskGraph {
	g := &TaskGraph{tasks: make(map[string]*task.Task, len(tasks))}
	for _, t := range tasks {
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
	}
	return g
}

// Tasks returns every task in the graph, in insertion order.
func (g *TaskGraph) Tasks() []*task.Task {
	out := make([]*task.Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Len reports how many tasks remain in the graph.
func (g *TaskGraph) Len() int { return len(g.tasks) }

// HasCycles reports whether the dependency graph contains a cycle, via
// recursive DFS with a three-color visited set.
func (g *TaskGraph) HasCycles() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.tasks))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch color[id] {
		case gray:
			return true
		case black:
			return false
		}
		color[id] = gray
		t, ok := g.tasks[id]
		if ok {
			for _, dep := range t.Dependencies {
				if _, exists := g.tasks[dep]; exists && visit(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.order {
		if color[id] == white && visit(id) {
			return true
		}
	}
	return false
}

// CycleCheck returns a CyclicDependencyError naming every task in the graph
// (not only those on the cycle) if the graph has a cycle, or nil if it is
// acyclic.
func (g *TaskGraph) CycleCheck() error {
	if !g.HasCycles() {
		return nil
	}
	return &coreerrors.CyclicDependencyError{TaskIDs: g.order}
}

// ReadyTasks returns every task whose Dependencies are all present in
// completed and which is not itself in completed.
func (g *TaskGraph) ReadyTasks(completed map[string]bool) []*task.Task {
	var ready []*task.Task
	for _, id := range g.order {
		if completed[id] {
			continue
		}
		t := g.tasks[id]
		if dependenciesSatisfied(t, completed) {
			ready = append(ready, t)
		}
	}
	return ready
}

func dependenciesSatisfied(t *task.Task, completed map[string]bool) bool {
	for _, dep := range t.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// ConflictAwareTaskGraph additionally filters ready tasks by file-set
// disjointness against every currently running task.
type ConflictAwareTaskGraph struct {
	*TaskGraph
}

// NewConflictAwareTaskGraph wraps tasks in a conflict-aware graph.
func NewConflictAwareTaskGraph(tasks []*task.Task) *ConflictAwareTaskGraph {
	return &ConflictAwareTaskGraph{TaskGraph: NewTaskGraph(tasks)}
}

// ReadyNonConflictingTasks filters ReadyTasks(completed) to those whose
// RequiredFiles() is disjoint from the union of every running task's
// RequiredFiles(), per spec.md §4.6.
func (g *ConflictAwareTaskGraph) ReadyNonConflictingTasks(completed map[string]bool, running map[string]bool) []*task.Task {
	locked := make(map[string]bool)
	for id := range running {
		t, ok := g.tasks[id]
		if !ok {
			continue
		}
		for _, f := range t.RequiredFiles() {
			locked[f] = true
		}
	}

	var ready []*task.Task
	for _, t := range g.ReadyTasks(completed) {
		conflict := false
		for _, f := range t.RequiredFiles() {
			if locked[f] {
				conflict = true
				break
			}
		}
		if !conflict {
			ready = append(ready, t)
		}
	}
	return ready
}
