package main

import (
	"context"
	"fmt"

	ctxdomain "github.com/agentcore/agentcore/internal/domain/context"
	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
)

// localEchoProvider stands in for a concrete network-backed model client:
// provider wire protocols are explicitly out of scope (spec.md §6), so this
// demo entrypoint deterministically echoes the task back as a completed
// script — enough to drive routing, the script runtime and validation
// end-to-end without a network dependency, the same role localEchoProvider
// plays that HashEmbedder plays for the context index.
type localEchoProvider struct {
	name string
}

func (p *localEchoProvider) Name() string { return p.name }

func (p *localEchoProvider) IsAvailable(context.Context) bool { return true }

func (p *localEchoProvider) EstimateCost(ctxdomain.Context) float64 { return 0 }

func (p *localEchoProvider) Generate(_ context.Context, query string, _ ctxdomain.Context) (taskdomain.Response, error) {
	result := fmt.Sprintf("echo(%s): %s", p.name, query)
	script := fmt.Sprintf("```json\n{\"statements\": [], \"return\": %q}\n```", result)
	return taskdomain.Response{Text: script, Confidence: 0.5}, nil
}
