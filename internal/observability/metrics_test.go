package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsCollector(t *testing.T) {
	tests := []struct {
		name   string
		config MetricsConfig
	}{
		{name: "disabled", config: MetricsConfig{Enabled: false}},
		{name: "enabled without scrape server", config: MetricsConfig{Enabled: true, PrometheusPort: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector, err := NewMetricsCollector(tt.config)
			require.NoError(t, err)
			assert.NotNil(t, collector)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, collector.Shutdown(ctx))
		})
	}
}

func TestMetricsCollector_RecordRoutingDecision(t *testing.T) {
	collector, err := NewMetricsCollector(MetricsConfig{Enabled: true})
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = collector.Shutdown(ctx)
	}()

	ctx := context.Background()
	collector.RecordRoutingDecision(ctx, "large-general", "quality_critical")
	collector.RecordRoutingDecision(ctx, "small-fast", "cost_optimization")
	// No assertions beyond no panic; the exporter's registry is exercised
	// end-to-end by NewMetricsCollector's construction.
}

func TestMetricsCollector_SchedulerAndActiveTasks(t *testing.T) {
	collector, err := NewMetricsCollector(MetricsConfig{Enabled: true})
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = collector.Shutdown(ctx)
	}()

	ctx := context.Background()
	collector.IncrementActiveTasks(ctx)
	collector.IncrementActiveTasks(ctx)
	collector.RecordTaskCompleted(ctx, "completed", 120)
	collector.RecordTaskCompleted(ctx, "failed", 40)
	collector.DecrementActiveTasks(ctx)
}

func TestMetricsCollector_DisabledMethodsNeverPanic(t *testing.T) {
	collector, err := NewMetricsCollector(MetricsConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	collector.RecordRoutingDecision(ctx, "small-fast", "quality_critical")
	collector.RecordTaskCompleted(ctx, "completed", 10)
	collector.IncrementActiveTasks(ctx)
	collector.DecrementActiveTasks(ctx)
	require.NoError(t, collector.Shutdown(ctx))
}
