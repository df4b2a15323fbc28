package executor

import (
	"context"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
)

// AssessAction is the closed decision set a self-assessor returns.
type AssessAction int

const (
	AssessComplete AssessAction = iota
	AssessDecompose
	AssessGatherContext
)

// AssessDecision is the outcome of a lightweight pre-provider assessment,
// per spec.md §4.3 step 2.
type AssessDecision struct {
	Action     AssessAction
	Result     string   // AssessComplete: the short-circuited answer text
	Confidence float64  // AssessComplete
	Needs      []string // AssessGatherContext: extra files to fold into context
}

// Assessor decides, before a provider call, whether a task can be answered
// immediately, needs more context first, or should proceed to the normal
// route/build-context/generate pipeline. Optional: a nil Assessor on
// AgentExecutor skips straight to routing for every task.
type Assessor interface {
	Assess(ctx context.Context, t *taskdomain.Task) (AssessDecision, error)
}
