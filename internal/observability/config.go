// Package observability wires routing decisions, scheduler throughput and
// the executor pipeline into Prometheus metrics and OpenTelemetry traces.
package observability

// MetricsConfig controls whether metrics are collected and where the
// Prometheus scrape endpoint listens.
type MetricsConfig struct {
	Enabled        bool
	PrometheusPort int
}

// TracingConfig controls whether executor-pipeline spans are recorded.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	SampleRate  float64
}

// Config bundles the two independent observability surfaces a
// RoutingOrchestrator can be built with.
type Config struct {
	Metrics MetricsConfig
	Tracing TracingConfig
}

// DefaultConfig mirrors the defaults a production deployment would want:
// metrics on (scraped on the conventional Prometheus port), tracing off
// until a collector is actually wired up downstream.
func DefaultConfig() Config {
	return Config{
		Metrics: MetricsConfig{Enabled: true, PrometheusPort: 9090},
		Tracing: TracingConfig{Enabled: false, ServiceName: "agentcore", SampleRate: 1.0},
	}
}

func (c Config) normalize() Config {
	if c.Metrics.PrometheusPort == 0 {
		c.Metrics.PrometheusPort = 9090
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "agentcore"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	return c
}
