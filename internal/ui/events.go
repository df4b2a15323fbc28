// Package ui implements the multi-producer, single-consumer event sink the
// executor and scheduler report progress through: a closed UiEvent sum type
// delivered over a buffered Go channel, per spec.md §4.7.
package ui

import "github.com/agentcore/agentcore/internal/domain/task"

// EventKind discriminates the closed UiEvent set.
type EventKind int

const (
	EventTaskStarted EventKind = iota
	EventTaskStepStarted
	EventTaskStepCompleted
	EventTaskStepFailed
	EventTaskProgress
	EventTaskOutput
	EventWorkUnitStarted
	EventTaskCompleted
	EventTaskFailed
)

// Progress is the payload of a TaskProgress event.
type Progress struct {
	Stage   string
	Current int
	Total   int // zero means "unknown total"
	Message string
}

// Event is one entry in the closed UiEvent set from spec.md §4.7. Only the
// field(s) relevant to Kind are populated; the rest are zero.
type Event struct {
	Kind EventKind

	TaskID      string
	Description string // TaskStarted
	ParentID    string // TaskStarted
	ThreadID    string // TaskStarted

	StepID   string // TaskStep*
	StepType string // TaskStepStarted
	Content  string // TaskStepStarted

	Error string // TaskStepFailed, TaskFailed

	Progress Progress // TaskProgress

	Output string // TaskOutput

	WorkUnit *task.WorkUnit // WorkUnitStarted: shared handle, mutates until terminal event

	Result *task.TaskResult // TaskCompleted
}

func TaskStarted(taskID, description, parentID, threadID string) Event {
	return Event{Kind: EventTaskStarted, TaskID: taskID, Description: description, ParentID: parentID, ThreadID: threadID}
}

func TaskStepStarted(taskID, stepID, stepType, content string) Event {
	return Event{Kind: EventTaskStepStarted, TaskID: taskID, StepID: stepID, StepType: stepType, Content: content}
}

func TaskStepCompleted(taskID, stepID string) Event {
	return Event{Kind: EventTaskStepCompleted, TaskID: taskID, StepID: stepID}
}

func TaskStepFailed(taskID, stepID, err string) Event {
	return Event{Kind: EventTaskStepFailed, TaskID: taskID, StepID: stepID, Error: err}
}

func TaskProgress(taskID string, progress Progress) Event {
	return Event{Kind: EventTaskProgress, TaskID: taskID, Progress: progress}
}

func TaskOutput(taskID, output string) Event {
	return Event{Kind: EventTaskOutput, TaskID: taskID, Output: output}
}

func WorkUnitStarted(taskID string, wu *task.WorkUnit) Event {
	return Event{Kind: EventWorkUnitStarted, TaskID: taskID, WorkUnit: wu}
}

func TaskCompleted(taskID string, result *task.TaskResult) Event {
	return Event{Kind: EventTaskCompleted, TaskID: taskID, Result: result}
}

func TaskFailed(taskID, err string) Event {
	return Event{Kind: EventTaskFailed, TaskID: taskID, Error: err}
}

// IsTerminal reports whether this event is the last one a task_id will ever
// produce, per spec.md §4.7's ordering contract.
func (e Event) IsTerminal() bool {
	return e.Kind == EventTaskCompleted || e.Kind == EventTaskFailed
}
