// Package orchestrator wires every collaborator package into a single
// RoutingOrchestrator façade: model routing, context retrieval, the script
// runtime and its host-tool registry, workspace isolation, validation and
// the conflict-aware scheduler (see DESIGN.md). The package is grounded
// entirely on composing the routing/contextengine/scriptruntime/
// toolregistry/workspace/executor/scheduler/ui/thread packages the way
// cmd/agentcore's demo entrypoint needs them composed.
package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/agentcore/agentcore/internal/contextengine"
	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/agentcore/agentcore/internal/executor"
	"github.com/agentcore/agentcore/internal/observability"
	"github.com/agentcore/agentcore/internal/routing"
	"github.com/agentcore/agentcore/internal/routing/strategies"
	"github.com/agentcore/agentcore/internal/scheduler"
	"github.com/agentcore/agentcore/internal/scriptruntime"
	"github.com/agentcore/agentcore/internal/shared/config"
	"github.com/agentcore/agentcore/internal/thread"
	"github.com/agentcore/agentcore/internal/toolregistry"
	"github.com/agentcore/agentcore/internal/ui"
	"github.com/agentcore/agentcore/internal/workspace"
)

// RateLimit configures ClientFactory's shared user-level token bucket.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

// Config is everything a RoutingOrchestrator needs to stand up: routing
// policy, the workspace it operates over, and the one piece only the
// caller can supply — how to construct an unwrapped provider client for a
// given (tier, model) pair (e.g. an OpenAI/Anthropic/local-runtime SDK
// call). Everything else is defaulted the way spec.md §4.1/§4.6 describe.
type Config struct {
	Routing       config.RoutingConfig
	WorkspaceRoot string

	// NewRawProvider constructs one unwrapped provider client. Required.
	// ClientFactory wraps every client this returns with retry+circuit-
	// breaker and, if UserRateLimit is set, rate limiting, per
	// routing.ClientFactory's wrap order.
	NewRawProvider func(tier, model string) (ports.Provider, error)

	// TierModels lists which model names each enabled tier family should
	// register, keyed "local"/"hosted"/"premium". Defaults to the model
	// names ModelRegistry's default difficulty bands expect to resolve.
	TierModels map[string][]string

	// Strategies overrides the default QualityCritical/LongContext/
	// CostOptimization/ComplexityBased chain entirely, when non-empty.
	Strategies []ports.RoutingStrategy

	// Embedder overrides the ContextIndex's embedder. Defaults to a
	// HashEmbedder — the only embedder this module ships, since no real
	// network-backed embedding service exists anywhere in the example
	// corpus this was grounded on (see DESIGN.md).
	Embedder contextengine.Embedder

	// Assessor enables the pre-routing self-assessment short-circuit.
	// Nil (the default) skips straight to routing for every task.
	Assessor executor.Assessor

	// ValidationStages are appended after the always-on SyntaxStage.
	ValidationStages []ports.Validator

	// Observability configures the Prometheus metrics and OpenTelemetry
	// tracing wired into the router, scheduler pool and every spawned
	// AgentExecutor. The zero value disables both metrics and tracing; pass
	// observability.DefaultConfig() to turn metrics on.
	Observability observability.Config

	UserRateLimit *RateLimit
	MaxConcurrent int
	ChannelBuffer int
}

func defaultTierModels() map[string][]string {
	return map[string][]string{
		"local":   {"small-fast", "medium-coder"},
		"hosted":  {"large-general", "premium-fast"},
		"premium": {"premium-best"},
	}
}

func defaultStrategies(models *routing.ModelRegistry) []ports.RoutingStrategy {
	return []ports.RoutingStrategy{
		strategies.QualityCritical{PremiumBestModel: "premium-best"},
		strategies.LongContext{TokenThreshold: 6000, Model: "large-general"},
		strategies.CostOptimization{
			TinyModel: "small-fast", TinyMax: 2000,
			MediumModel: "medium-coder", MediumMax: 6000,
			LargeModel: "large-general", LargeMax: 12000,
			VeryLargeModel: "premium-fast",
		},
		strategies.ComplexityBased{Registry: models},
	}
}

func (c Config) normalize() Config {
	if c.Routing.MaxConcurrent == 0 && !c.Routing.Tiers.LocalEnabled && !c.Routing.Tiers.HostedEnabled && !c.Routing.Tiers.PremiumEnabled {
		c.Routing = config.Default()
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = c.Routing.MaxConcurrent
	}
	if c.ChannelBuffer <= 0 {
		c.ChannelBuffer = 64
	}
	if len(c.TierModels) == 0 {
		c.TierModels = defaultTierModels()
	}
	return c
}

// RoutingOrchestrator is the single object cmd/agentcore (or any other
// embedder) constructs to submit tasks, drain UI events, and manage
// conversation threads.
type RoutingOrchestrator struct {
	config config.RoutingConfig

	models    *routing.ModelRegistry
	providers *routing.ProviderRegistry
	router    *routing.Router

	index   *contextengine.ContextIndex
	builder *contextengine.ContextBuilder

	tools   *toolregistry.Registry
	runtime *scriptruntime.Runtime

	validation *executor.ValidationPipeline
	assessor   executor.Assessor

	channel *ui.Channel
	threads *thread.Store
	pool    *scheduler.ExecutorPool

	metrics *observability.MetricsCollector
	tracer  *observability.Tracer
}

// New builds a RoutingOrchestrator: constructs the model registry, wraps
// provider clients through a ClientFactory, builds the context index over
// cfg.WorkspaceRoot, registers the closed host-tool set, and assembles a
// bounded-concurrency ExecutorPool over an AgentExecutor factory. ctx bounds
// the initial context-index build (spec.md §4.2's indexing pass).
func New(ctx context.Context, cfg Config) (*RoutingOrchestrator, error) {
	cfg = cfg.normalize()
	if cfg.NewRawProvider == nil {
		return nil, fmt.Errorf("orchestrator: NewRawProvider is required")
	}
	if cfg.WorkspaceRoot == "" {
		return nil, fmt.Errorf("orchestrator: WorkspaceRoot is required")
	}

	clientFactory := routing.NewClientFactory(cfg.NewRawProvider)
	if cfg.UserRateLimit != nil {
		clientFactory.EnableUserRateLimit(rate.Limit(cfg.UserRateLimit.PerSecond), cfg.UserRateLimit.Burst)
	}

	providers, err := routing.NewProviderRegistry(cfg.Routing, func(tier, _ string) (map[string]ports.Provider, error) {
		models := cfg.TierModels[tier]
		out := make(map[string]ports.Provider, len(models))
		for _, model := range models {
			client, err := clientFactory.GetClient(tier, model)
			if err != nil {
				return nil, fmt.Errorf("build %s/%s client: %w", tier, model, err)
			}
			out[model] = client
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("build provider registry: %w", err)
	}

	metrics, err := observability.NewMetricsCollector(cfg.Observability.Metrics)
	if err != nil {
		return nil, fmt.Errorf("build metrics collector: %w", err)
	}
	tracer, err := observability.NewTracer(cfg.Observability.Tracing)
	if err != nil {
		return nil, fmt.Errorf("build tracer: %w", err)
	}

	models := routing.NewModelRegistryWithDefaults()
	strategyChain := cfg.Strategies
	if len(strategyChain) == 0 {
		strategyChain = defaultStrategies(models)
	}
	router := routing.NewRouter(providers, strategyChain...)
	router.SetMetrics(metrics)

	embedder := cfg.Embedder
	if embedder == nil {
		embedder = contextengine.NewHashEmbedder(64)
	}
	index, err := contextengine.NewContextIndex(contextengine.ContextIndexConfig{WorkspaceRoot: cfg.WorkspaceRoot}, embedder)
	if err != nil {
		return nil, fmt.Errorf("build context index: %w", err)
	}
	if err := index.Build(ctx, nil); err != nil {
		return nil, fmt.Errorf("index workspace: %w", err)
	}

	threads := thread.NewStore()
	builder := contextengine.NewContextBuilder(index, contextengine.ContextBuilderConfig{}, threads)

	global := workspace.NewWorkspaceState(cfg.WorkspaceRoot)
	locks := workspace.NewFileLockManager()
	wsRegistry := executor.NewWorkspaceRegistry(global, locks)
	searcher := executor.NewIndexSearcher(index)
	supplement := executor.NewSupplementalStore()
	subagentCoordinator := executor.NewSubagentCoordinator(router, providers, builder)

	tools := toolregistry.New(toolregistry.Config{})
	tools.RegisterBuiltins(toolregistry.BuiltinsConfig{
		Workspaces:  wsRegistry,
		Searcher:    searcher,
		Supplement:  supplement,
		Coordinator: subagentCoordinator,
	})

	runtime := scriptruntime.New(tools, scriptruntime.Config{})

	stages := append([]ports.Validator{executor.SyntaxStage{}}, cfg.ValidationStages...)
	validation := executor.NewValidationPipeline(cfg.Routing.Validation.EarlyExit, stages...)

	channel := ui.NewChannel(cfg.ChannelBuffer)

	o := &RoutingOrchestrator{
		config:     cfg.Routing,
		models:     models,
		providers:  providers,
		router:     router,
		index:      index,
		builder:    builder,
		tools:      tools,
		runtime:    runtime,
		validation: validation,
		assessor:   cfg.Assessor,
		channel:    channel,
		threads:    threads,
		metrics:    metrics,
		tracer:     tracer,
	}

	factory := func() scheduler.TaskRunner {
		exec := executor.New(router, providers, builder, runtime, tools, validation, o.assessor, supplement, executor.Config{})
		exec.SetTracer(tracer)
		return exec
	}
	o.pool = scheduler.NewExecutorPool(factory, channel, cfg.MaxConcurrent)
	o.pool.SetMetrics(metrics)
	return o, nil
}

// SubmitTasks drains tasks to completion through the scheduler, choosing
// the conflict-aware graph when the routing config's EnableConflictDetection
// is set, per spec.md §4.6.
func (o *RoutingOrchestrator) SubmitTasks(ctx context.Context, tasks []*taskdomain.Task) ([]taskdomain.TaskResult, error) {
	if o.config.Execution.EnableConflictDetection {
		return o.pool.ExecuteConflictAwareGraph(ctx, scheduler.NewConflictAwareTaskGraph(tasks))
	}
	return o.pool.ExecuteGraph(ctx, scheduler.NewTaskGraph(tasks))
}

// Events returns the single consumer-side stream every spawned task's
// events funnel into.
func (o *RoutingOrchestrator) Events() <-chan ui.Event { return o.channel.Events() }

// Close signals no more tasks will be submitted and no more events sent, and
// tears down the metrics scrape server and tracer provider, if either was
// enabled.
func (o *RoutingOrchestrator) Close() {
	o.channel.Close()
	ctx := context.Background()
	_ = o.metrics.Shutdown(ctx)
	_ = o.tracer.Shutdown(ctx)
}

// Threads exposes the conversation store so a caller can create threads and
// attach messages before submitting the tasks those messages dispatch.
func (o *RoutingOrchestrator) Threads() *thread.Store { return o.threads }

// Reindex re-scans the workspace root, picking up files changed since
// construction or the last Reindex call.
func (o *RoutingOrchestrator) Reindex(ctx context.Context) error {
	return o.index.Build(ctx, nil)
}
