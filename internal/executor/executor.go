// Package executor implements AgentExecutor, the per-task driver that turns
// a Task into a TaskResult by routing it to a provider, running the
// returned script against the host tool registry, decomposing into a
// WorkUnit when the script returns a TaskList, and validating the outcome —
// spec.md §4.3's execute_streaming pipeline.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentcore/agentcore/internal/contextengine"
	"github.com/agentcore/agentcore/internal/domain/ports"
	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/observability"
	"github.com/agentcore/agentcore/internal/routing"
	"github.com/agentcore/agentcore/internal/scriptruntime"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
	"github.com/agentcore/agentcore/internal/shared/logging"
	"github.com/agentcore/agentcore/internal/ui"
)

// Config bounds an AgentExecutor's behavior.
type Config struct {
	Retry            coreerrors.RetryConfig
	MaxContinuations int // bounds the {done:"false"} continuation loop
}

func (c Config) normalize() Config {
	if c.Retry.MaxAttempts == 0 {
		c.Retry = coreerrors.DefaultRetryConfig()
	}
	if c.MaxContinuations <= 0 {
		c.MaxContinuations = 5
	}
	return c
}

// AgentExecutor drives a single Task through the full pipeline. One
// instance is constructed per spawned task by the scheduler's
// ExecutorFactory closure; its collaborators (router, registry, runtime)
// are shared handles, not owned by the executor.
type AgentExecutor struct {
	router     *routing.Router
	providers  *routing.ProviderRegistry
	builder    *contextengine.ContextBuilder
	runtime    *scriptruntime.Runtime
	tools      scriptruntime.ToolInvoker
	validation *ValidationPipeline
	assessor   Assessor
	supplement *supplementalStore
	logger     *logging.Logger
	tracer     *observability.Tracer
	config     Config
}

// New builds an AgentExecutor. assessor may be nil to always route straight
// to a provider call, per spec.md §4.3 step 2.
func New(
	router *routing.Router,
	providers *routing.ProviderRegistry,
	builder *contextengine.ContextBuilder,
	runtime *scriptruntime.Runtime,
	tools scriptruntime.ToolInvoker,
	validation *ValidationPipeline,
	assessor Assessor,
	supplement *supplementalStore,
	config Config,
) *AgentExecutor {
	tracer, _ := observability.NewTracer(observability.TracingConfig{})
	return &AgentExecutor{
		router:     router,
		providers:  providers,
		builder:    builder,
		runtime:    runtime,
		tools:      tools,
		validation: validation,
		assessor:   assessor,
		supplement: supplement,
		logger:     logging.NewComponentLogger("executor"),
		tracer:     tracer,
		config:     config.normalize(),
	}
}

// SetTracer attaches a Tracer that every subsequent Execute call spans its
// pipeline stages against. Optional: an AgentExecutor with no tracer set
// traces against the no-op default NewTracer built in New.
func (e *AgentExecutor) SetTracer(tracer *observability.Tracer) {
	if tracer != nil {
		e.tracer = tracer
	}
}

// Run satisfies scheduler.TaskRunner, adapting Execute's richer signature to
// the scheduler's closure-friendly one.
func (e *AgentExecutor) Run(ctx context.Context, t *taskdomain.Task, sender ui.Sender) taskdomain.TaskResult {
	return e.Execute(ctx, t, sender)
}

// Execute runs the ten-step execute_streaming pipeline described in
// spec.md §4.3.
func (e *AgentExecutor) Execute(ctx context.Context, t *taskdomain.Task, sender ui.Sender) taskdomain.TaskResult {
	ctx, span := e.tracer.Start(ctx, "executor.Execute")
	span.SetAttributes(attribute.String("task.id", t.ID))
	defer span.End()

	start := time.Now()
	defer func() {
		if e.supplement != nil {
			e.supplement.Forget(t.ID)
		}
	}()

	_ = sender.Send(ctx, ui.TaskStarted(t.ID, t.Description, t.ParentID, t.ThreadID))

	if e.assessor != nil {
		decision, err := e.assessor.Assess(ctx, t)
		if err != nil {
			e.logger.Warn("self-assessment failed for task %s: %v; falling through to routing", t.ID, err)
		} else {
			switch decision.Action {
			case AssessComplete:
				resp := taskdomain.Response{Text: decision.Result, Confidence: decision.Confidence}
				return e.finish(ctx, t, sender, start, resp, 0, nil)
			case AssessGatherContext:
				t.Context.RequiredFiles = append(t.Context.RequiredFiles, decision.Needs...)
			case AssessDecompose:
				// Falls through to the normal pipeline: the provider call below
				// is expected to return a TaskList given the gathered needs.
			}
		}
	}

	decision, err := e.router.Route(ctx, t)
	if err != nil {
		return e.fail(ctx, t, sender, start, 0, fmt.Errorf("route task: %w", err))
	}
	t.DecisionHistory = append(t.DecisionHistory, taskdomain.DecisionRecord{At: time.Now(), Kind: "route", Detail: decision.Reasoning})

	provider, err := e.providers.Get(decision.Model)
	if err != nil {
		return e.fail(ctx, t, sender, start, 0, fmt.Errorf("resolve provider: %w", err))
	}

	resp, retries, err := e.generateWithContext(ctx, t, sender, provider)
	if err != nil {
		return e.fail(ctx, t, sender, start, retries, err)
	}

	return e.processResponse(ctx, t, sender, start, provider, resp, retries)
}

// generateWithContext wraps context-building and the provider call with the
// explicit TaskStepStarted/Completed pair spec.md §4.3 step 4 calls for,
// since ContextBuilder.Build takes no ui_channel of its own, and retries the
// provider call per step 7's transient-error backoff.
func (e *AgentExecutor) generateWithContext(ctx context.Context, t *taskdomain.Task, sender ui.Sender, provider ports.Provider) (taskdomain.Response, int, error) {
	ctx, span := e.tracer.Start(ctx, "executor.generateWithContext")
	span.SetAttributes(attribute.String("task.id", t.ID), attribute.String("provider", provider.Name()))
	defer span.End()

	_ = sender.Send(ctx, ui.TaskStepStarted(t.ID, "file_gathering", "file_gathering", ""))
	built, err := e.builder.Build(ctx, t)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		_ = sender.Send(ctx, ui.TaskStepFailed(t.ID, "file_gathering", err.Error()))
		return taskdomain.Response{}, 0, fmt.Errorf("build context: %w", err)
	}
	if e.supplement != nil {
		built = mergeSupplemental(built, e.supplement.Files(t.ID))
	}
	_ = sender.Send(ctx, ui.TaskStepCompleted(t.ID, "file_gathering"))

	retries := 0
	resp, err := coreerrors.RetryWithResult(ctx, e.config.Retry, func(ctx context.Context) (taskdomain.Response, error) {
		if retries > 0 {
			_ = sender.Send(ctx, ui.TaskProgress(t.ID, ui.Progress{Stage: "provider_retry", Current: retries}))
		}
		r, genErr := provider.Generate(ctx, t.Description, built)
		if genErr != nil {
			retries++
		}
		return r, genErr
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return taskdomain.Response{}, retries, fmt.Errorf("provider call: %w", err)
	}
	resp.ProviderName = provider.Name()
	return resp, retries, nil
}

// processResponse extracts and evaluates the emitted script (step 6-7),
// following its DirectResult / continuation / TaskList shape through to a
// terminal TaskResult.
func (e *AgentExecutor) processResponse(ctx context.Context, t *taskdomain.Task, sender ui.Sender, start time.Time, provider ports.Provider, resp taskdomain.Response, retries int) taskdomain.TaskResult {
	for continuation := 0; ; continuation++ {
		script, ok := extractScriptBlock(resp.Text)
		if !ok {
			return e.finish(ctx, t, sender, start, resp, retries, nil)
		}

		result, err := e.runtime.Execute(ctx, t.ID, script)
		if err != nil {
			return e.fail(ctx, t, sender, start, retries, fmt.Errorf("script evaluation: %w", err))
		}

		if result.Plan != nil && len(result.Plan.Steps) > 0 {
			return e.runWorkUnit(ctx, t, sender, start, resp, retries, result.Plan)
		}

		if hint, isContinuation := continuationRequested(result.Value); isContinuation {
			if continuation >= e.config.MaxContinuations {
				return e.fail(ctx, t, sender, start, retries, &coreerrors.ExecutionFailedError{Message: "continuation limit exceeded"})
			}
			_ = sender.Send(ctx, ui.TaskProgress(t.ID, ui.Progress{Stage: "continuation", Current: continuation + 1}))

			originalDescription := t.Description
			if hintText, ok := hint.(string); ok && hintText != "" {
				t.Description = originalDescription + "\n" + hintText
			}
			next, _, genErr := e.generateWithContext(ctx, t, sender, provider)
			t.Description = originalDescription
			if genErr != nil {
				return e.fail(ctx, t, sender, start, retries, genErr)
			}
			resp = next
			continue
		}

		resp.Text = valueAsText(result.Value)
		return e.finish(ctx, t, sender, start, resp, retries, nil)
	}
}

// runWorkUnit decomposes the task into a WorkUnit per the extracted Plan and
// drives it to completion via RunPlan, per spec.md §4.3 step 8.
func (e *AgentExecutor) runWorkUnit(ctx context.Context, t *taskdomain.Task, sender ui.Sender, start time.Time, resp taskdomain.Response, retries int, plan *scriptruntime.Plan) taskdomain.TaskResult {
	ctx, span := e.tracer.Start(ctx, "executor.runWorkUnit")
	span.SetAttributes(attribute.String("task.id", t.ID), attribute.Int("subtask.count", len(plan.Steps)))
	defer span.End()

	wu := &taskdomain.WorkUnit{
		ID:       uuid.NewString(),
		TaskID:   t.ID,
		Status:   taskdomain.WorkUnitInProgress,
		TierUsed: resp.ProviderName,
	}
	for _, step := range plan.Steps {
		wu.Subtasks = append(wu.Subtasks, &taskdomain.Subtask{
			ID:          uuid.NewString(),
			Description: step.Description,
			Difficulty:  estimateStepDifficulty(step.StepType),
			Status:      taskdomain.SubtaskPending,
		})
	}
	_ = sender.Send(ctx, ui.WorkUnitStarted(t.ID, wu))

	sink := newWorkUnitSink(ctx, t.ID, sender, wu)
	if err := e.runtime.RunPlan(ctx, t.ID, plan, sink); err != nil {
		wu.Status = taskdomain.WorkUnitFailed
		return e.fail(ctx, t, sender, start, retries, fmt.Errorf("run plan: %w", err))
	}

	if wu.AllSubtasksCompleted() {
		wu.Status = taskdomain.WorkUnitCompleted
	} else {
		wu.Status = taskdomain.WorkUnitFailed
	}
	wu.DurationMS = time.Since(start).Milliseconds()
	wu.RetryCount = retries

	return e.finish(ctx, t, sender, start, resp, retries, wu)
}

// finish runs validation and emits the terminal event: TaskFailed when
// validation fails for a result with no WorkUnit, TaskCompleted otherwise.
func (e *AgentExecutor) finish(ctx context.Context, t *taskdomain.Task, sender ui.Sender, start time.Time, resp taskdomain.Response, retries int, wu *taskdomain.WorkUnit) taskdomain.TaskResult {
	validation := taskdomain.ValidationResult{Score: 1.0, Passed: true}
	if e.validation != nil {
		validation = e.validation.Run(ctx, resp, t)
	}

	result := taskdomain.TaskResult{
		TaskID:     t.ID,
		Response:   resp,
		Tier:       resp.ProviderName,
		Validation: validation,
		DurationMS: time.Since(start).Milliseconds(),
		RetryCount: retries,
		WorkUnit:   wu,
	}

	if !validation.Passed && wu == nil {
		result.Err = fmt.Errorf("validation failed: %d stage(s) reported errors", len(validation.Errors))
		trace.SpanFromContext(ctx).SetStatus(codes.Error, result.Err.Error())
		_ = sender.Send(ctx, ui.TaskFailed(t.ID, result.Err.Error()))
		return result
	}

	_ = sender.Send(ctx, ui.TaskCompleted(t.ID, &result))
	return result
}

func (e *AgentExecutor) fail(ctx context.Context, t *taskdomain.Task, sender ui.Sender, start time.Time, retries int, err error) taskdomain.TaskResult {
	result := taskdomain.TaskResult{
		TaskID:     t.ID,
		DurationMS: time.Since(start).Milliseconds(),
		RetryCount: retries,
		Err:        err,
	}
	trace.SpanFromContext(ctx).SetStatus(codes.Error, err.Error())
	_ = sender.Send(ctx, ui.TaskFailed(t.ID, err.Error()))
	return result
}

// continuationRequested reports whether v is the {done:"false",...} shape
// spec.md §4.3 step 7 describes for a script that asks to be re-entered
// with a fresh provider call rather than terminating.
func continuationRequested(v any) (any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	done, ok := obj["done"]
	if !ok {
		return nil, false
	}
	doneStr, ok := done.(string)
	if !ok || doneStr != "false" {
		return nil, false
	}
	return obj["continue"], true
}

func valueAsText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if obj, ok := v.(map[string]any); ok {
		if s, ok := obj["result"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", v)
}
