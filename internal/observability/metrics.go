package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsCollector records routing decisions, scheduler throughput and
// active-task concurrency, backed by an OpenTelemetry meter whose readings
// are exported in Prometheus exposition format. All methods are no-ops when
// the collector was built from a disabled MetricsConfig, so callers never
// need to nil-check or branch on configuration.
type MetricsCollector struct {
	enabled bool

	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
	server   *http.Server

	routingDecisions   metric.Int64Counter
	schedulerTasks     metric.Int64Counter
	schedulerDurations metric.Float64Histogram
	activeTasks        metric.Int64UpDownCounter
}

// NewMetricsCollector builds a MetricsCollector. When cfg.Enabled and
// cfg.PrometheusPort are both set, it also starts an HTTP server exposing
// the /metrics scrape endpoint; Shutdown tears that server down.
func NewMetricsCollector(cfg MetricsConfig) (*MetricsCollector, error) {
	if !cfg.Enabled {
		return &MetricsCollector{enabled: false}, nil
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("build prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("agentcore")

	routingDecisions, err := meter.Int64Counter("agentcore_routing_decisions_total",
		metric.WithDescription("Routing decisions made, by selected model and strategy"))
	if err != nil {
		return nil, fmt.Errorf("build routing_decisions counter: %w", err)
	}
	schedulerTasks, err := meter.Int64Counter("agentcore_scheduler_tasks_total",
		metric.WithDescription("Tasks drained by the scheduler, by completion status"))
	if err != nil {
		return nil, fmt.Errorf("build scheduler_tasks counter: %w", err)
	}
	schedulerDurations, err := meter.Float64Histogram("agentcore_scheduler_task_duration_ms",
		metric.WithDescription("Task duration as observed by the scheduler"), metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("build scheduler_task_duration histogram: %w", err)
	}
	activeTasks, err := meter.Int64UpDownCounter("agentcore_active_tasks",
		metric.WithDescription("Tasks currently in flight across the executor pool"))
	if err != nil {
		return nil, fmt.Errorf("build active_tasks counter: %w", err)
	}

	c := &MetricsCollector{
		enabled:            true,
		registry:           registry,
		provider:           provider,
		routingDecisions:   routingDecisions,
		schedulerTasks:     schedulerTasks,
		schedulerDurations: schedulerDurations,
		activeTasks:        activeTasks,
	}

	if cfg.PrometheusPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		c.server = &http.Server{Addr: fmt.Sprintf(":%d", cfg.PrometheusPort), Handler: mux}
		go func() { _ = c.server.ListenAndServe() }()
	}

	return c, nil
}

// RecordRoutingDecision records that strategy selected model for a task.
func (c *MetricsCollector) RecordRoutingDecision(ctx context.Context, model, strategy string) {
	if !c.enabled {
		return
	}
	c.routingDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("strategy", strategy),
	))
}

// RecordTaskCompleted records one scheduler-drained task's outcome and
// duration.
func (c *MetricsCollector) RecordTaskCompleted(ctx context.Context, status string, durationMS int64) {
	if !c.enabled {
		return
	}
	c.schedulerTasks.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	c.schedulerDurations.Record(ctx, float64(durationMS), metric.WithAttributes(attribute.String("status", status)))
}

// IncrementActiveTasks records a task starting execution.
func (c *MetricsCollector) IncrementActiveTasks(ctx context.Context) {
	if !c.enabled {
		return
	}
	c.activeTasks.Add(ctx, 1)
}

// DecrementActiveTasks records a task finishing execution.
func (c *MetricsCollector) DecrementActiveTasks(ctx context.Context) {
	if !c.enabled {
		return
	}
	c.activeTasks.Add(ctx, -1)
}

// Shutdown stops the scrape server (if one was started) and flushes the
// meter provider. Safe to call on a disabled collector.
func (c *MetricsCollector) Shutdown(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	return c.provider.Shutdown(ctx)
}
