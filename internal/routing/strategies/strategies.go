// Package strategies implements the default RoutingStrategy chain from
// spec.md §4.1: QualityCritical, LongContext, CostOptimization,
// ComplexityBased, ordered by descending priority. Scoring ideas (cost/
// latency bucketing) generalise a single flat scorer into named,
// independently-applicable strategies assembled into an ordered chain.
package strategies

import (
	"context"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/routing"
)

// QualityCritical triggers when a task's priority is Critical and picks the
// highest-quality premium model.
type QualityCritical struct {
	PremiumBestModel string
}

func (QualityCritical) Name() string { return "quality_critical" }
func (QualityCritical) Priority() int { return 100 }

func (QualityCritical) AppliesTo(t *taskdomain.Task) bool {
	return t.Priority == taskdomain.PriorityCritical
}

func (s QualityCritical) Select(_ context.Context, _ *taskdomain.Task) (string, bool) {
	if s.PremiumBestModel == "" {
		return "", false
	}
	return s.PremiumBestModel, true
}

// LongContext triggers when a task's estimated token count exceeds a
// configured threshold and picks a model with a sufficient context window.
type LongContext struct {
	TokenThreshold int
	Model          string
}

func (LongContext) Name() string { return "long_context" }
func (LongContext) Priority() int { return 90 }

func (l LongContext) AppliesTo(t *taskdomain.Task) bool {
	return t.Context.EstimatedTokens > l.TokenThreshold
}

func (l LongContext) Select(_ context.Context, _ *taskdomain.Task) (string, bool) {
	if l.Model == "" {
		return "", false
	}
	return l.Model, true
}

// CostOptimization is the default band: it picks a model by estimated-token
// bucket (tiny/medium/large/very large), per spec.md §4.1.
type CostOptimization struct {
	TinyModel      string
	MediumModel    string
	LargeModel     string
	VeryLargeModel string

	TinyMax   int
	MediumMax int
	LargeMax  int
}

func (CostOptimization) Name() string { return "cost_optimization" }
func (CostOptimization) Priority() int { return 50 }

func (CostOptimization) AppliesTo(*taskdomain.Task) bool { return true }

func (c CostOptimization) Select(_ context.Context, t *taskdomain.Task) (string, bool) {
	tokens := t.Context.EstimatedTokens
	switch {
	case tokens <= c.TinyMax && c.TinyModel != "":
		return c.TinyModel, true
	case tokens <= c.MediumMax && c.MediumModel != "":
		return c.MediumModel, true
	case tokens <= c.LargeMax && c.LargeModel != "":
		return c.LargeModel, true
	case c.VeryLargeModel != "":
		return c.VeryLargeModel, true
	default:
		return "", false
	}
}

// ComplexityBased is the fallback strategy: it maps difficulty directly via
// a ModelRegistry.
type ComplexityBased struct {
	Registry *routing.ModelRegistry
}

func (ComplexityBased) Name() string { return "complexity_based" }
func (ComplexityBased) Priority() int { return 10 }

func (ComplexityBased) AppliesTo(*taskdomain.Task) bool { return true }

func (c ComplexityBased) Select(_ context.Context, t *taskdomain.Task) (string, bool) {
	if c.Registry == nil {
		return "", false
	}
	model, err := c.Registry.Select(t.Difficulty)
	if err != nil {
		return "", false
	}
	return model, true
}
