package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/agentcore/internal/contextengine"
	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/routing"
)

// subagentCoordinator backs the `subagent` host tool: it recursively routes
// a sibling sub-task at the requested model tier, with no workspace or tool
// access of its own beyond the context it is handed, per spec.md §4.4.
type subagentCoordinator struct {
	router    *routing.Router
	providers *routing.ProviderRegistry
	builder   *contextengine.ContextBuilder
}

func newSubagentCoordinator(router *routing.Router, providers *routing.ProviderRegistry, builder *contextengine.ContextBuilder) *subagentCoordinator {
	return &subagentCoordinator{router: router, providers: providers, builder: builder}
}

func (c *subagentCoordinator) RunSubagent(ctx context.Context, parentTaskID, task, contextHint, modelTier string) (taskdomain.Response, error) {
	sub := &taskdomain.Task{
		ID:          uuid.NewString(),
		Description: task,
		ParentID:    parentTaskID,
		CreatedAt:   time.Now(),
	}

	model := modelTier
	if model == "" {
		decision, err := c.router.Route(ctx, sub)
		if err != nil {
			return taskdomain.Response{}, fmt.Errorf("route subagent task: %w", err)
		}
		model = decision.Model
	}
	provider, err := c.providers.Get(model)
	if err != nil {
		return taskdomain.Response{}, fmt.Errorf("resolve subagent provider: %w", err)
	}

	built, err := c.builder.Build(ctx, sub)
	if err != nil {
		return taskdomain.Response{}, fmt.Errorf("build subagent context: %w", err)
	}
	if contextHint != "" {
		built.SystemPrompt += "\n" + contextHint
	}

	start := time.Now()
	resp, err := provider.Generate(ctx, sub.Description, built)
	if err != nil {
		return taskdomain.Response{}, fmt.Errorf("subagent provider call: %w", err)
	}
	resp.LatencyMS = time.Since(start).Milliseconds()
	resp.ProviderName = provider.Name()
	return resp, nil
}
