package main

import (
	"fmt"
	"os"

	"github.com/agentcore/agentcore/internal/ui"
)

// printEvent renders one UiEvent as a single stderr line, leaving stdout
// free for the final task output.
func printEvent(ev ui.Event) {
	switch ev.Kind {
	case ui.EventTaskStarted:
		fmt.Fprintf(os.Stderr, "[task %s] started: %s\n", ev.TaskID, ev.Description)
	case ui.EventTaskStepStarted:
		fmt.Fprintf(os.Stderr, "[task %s] step %s (%s) started\n", ev.TaskID, ev.StepID, ev.StepType)
	case ui.EventTaskStepCompleted:
		fmt.Fprintf(os.Stderr, "[task %s] step %s completed\n", ev.TaskID, ev.StepID)
	case ui.EventTaskStepFailed:
		fmt.Fprintf(os.Stderr, "[task %s] step %s failed: %s\n", ev.TaskID, ev.StepID, ev.Error)
	case ui.EventTaskProgress:
		fmt.Fprintf(os.Stderr, "[task %s] progress: %s (%d/%d)\n", ev.TaskID, ev.Progress.Stage, ev.Progress.Current, ev.Progress.Total)
	case ui.EventTaskOutput:
		fmt.Fprintf(os.Stderr, "[task %s] output: %s\n", ev.TaskID, ev.Output)
	case ui.EventWorkUnitStarted:
		fmt.Fprintf(os.Stderr, "[task %s] work unit started: %d subtask(s)\n", ev.TaskID, len(ev.WorkUnit.Subtasks))
	case ui.EventTaskCompleted:
		fmt.Fprintf(os.Stderr, "[task %s] completed in %dms\n", ev.TaskID, ev.Result.DurationMS)
	case ui.EventTaskFailed:
		fmt.Fprintf(os.Stderr, "[task %s] failed: %s\n", ev.TaskID, ev.Error)
	}
}
