package gateway

import (
	"time"

	"mcpgateway/internal/forward"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the gateway's Prometheus instrumentation: backend
// connect outcomes, aggregated capability counts, and forwarded-call
// latency/outcome.
type Metrics struct {
	connectTotal    *prometheus.CounterVec
	capabilityGauge *prometheus.GaugeVec
	forwardTotal    *prometheus.CounterVec
	forwardLatency  *prometheus.HistogramVec
}

// NewMetrics registers the gateway's collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpgateway_backend_connect_total",
			Help: "Outcomes of backend connection attempts.",
		}, []string{"backend", "outcome"}),
		capabilityGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mcpgateway_capabilities",
			Help: "Number of aggregated capabilities by kind.",
		}, []string{"kind"}),
		forwardTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpgateway_forward_total",
			Help: "Outcomes of forwarded calls by backend and error kind.",
		}, []string{"backend", "kind"}),
		forwardLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcpgateway_forward_duration_seconds",
			Help:    "Latency of forwarded calls by backend.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
	}

	reg.MustRegister(m.connectTotal, m.capabilityGauge, m.forwardTotal, m.forwardLatency)
	return m
}

// ObserveConnect records whether a backend's connection attempt succeeded.
func (m *Metrics) ObserveConnect(backend string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.connectTotal.WithLabelValues(backend, outcome).Inc()
}

// SetCapabilityCounts records the current aggregated capability counts.
func (m *Metrics) SetCapabilityCounts(tools, resources, prompts int) {
	m.capabilityGauge.WithLabelValues("tool").Set(float64(tools))
	m.capabilityGauge.WithLabelValues("resource").Set(float64(resources))
	m.capabilityGauge.WithLabelValues("prompt").Set(float64(prompts))
}

// ObserveForward implements forward.Metrics.
func (m *Metrics) ObserveForward(backend string, kind forward.Kind, duration time.Duration) {
	label := string(kind)
	if label == "" {
		label = "success"
	}
	m.forwardTotal.WithLabelValues(backend, label).Inc()
	m.forwardLatency.WithLabelValues(backend).Observe(duration.Seconds())
}

var _ forward.Metrics = (*Metrics)(nil)
