package routing

import (
	"context"
	"fmt"
	"sort"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/agentcore/agentcore/internal/observability"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
	"github.com/agentcore/agentcore/internal/shared/logging"
)

// RoutingDecision is logged and attached to the resulting TaskResult.
type RoutingDecision struct {
	Model              string
	EstimatedCost      float64
	EstimatedLatencyMS int64
	Reasoning          string
}

// Router iterates RoutingStrategy implementations by descending priority;
// the first that applies to the task and selects an available, enabled
// model wins.
type Router struct {
	strategies []ports.RoutingStrategy
	providers  *ProviderRegistry
	logger     *logging.Logger
	metrics    *observability.MetricsCollector
}

// NewRouter builds a Router over strategies (sorted by descending
// Priority()) and a ProviderRegistry used to check model availability.
func NewRouter(providers *ProviderRegistry, strategies ...ports.RoutingStrategy) *Router {
	sorted := make([]ports.RoutingStrategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() > sorted[j].Priority() })
	return &Router{strategies: sorted, providers: providers, logger: logging.NewComponentLogger("router")}
}

// SetMetrics attaches a MetricsCollector that every subsequent Route call
// reports its decision to. Optional: a Router with no collector attached
// behaves exactly as before.
func (r *Router) SetMetrics(metrics *observability.MetricsCollector) {
	r.metrics = metrics
}

// Route selects a model for t, trying strategies in priority order and
// skipping any that do not apply or whose selection is unavailable.
func (r *Router) Route(ctx context.Context, t *taskdomain.Task) (RoutingDecision, error) {
	for i, strat := range r.strategies {
		if !strat.AppliesTo(t) {
			continue
		}
		model, ok := strat.Select(ctx, t)
		if !ok {
			continue
		}
		if r.providers != nil && !r.providers.IsAvailable(ctx, model) {
			r.logger.Debug("strategy %s selected unavailable model %s, trying next", strat.Name(), model)
			continue
		}
		reasoning := fmt.Sprintf("strategy=%s model=%s", strat.Name(), model)
		if i > 0 {
			reasoning += " (fallback from higher-priority strategies)"
		}
		cost, latencyMS := estimateCostAndLatency(model)
		if r.metrics != nil {
			r.metrics.RecordRoutingDecision(ctx, model, strat.Name())
		}
		return RoutingDecision{Model: model, EstimatedCost: cost, EstimatedLatencyMS: latencyMS, Reasoning: reasoning}, nil
	}
	return RoutingDecision{}, &coreerrors.NoAvailableTierError{TaskID: t.ID}
}
