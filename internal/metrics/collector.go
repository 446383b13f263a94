// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 Collector
// =============================================================================

// Collector records generation, transport, discovery and HTTP metrics.
// It satisfies llm.AttemptObserver, generation.Observer and
// discovery.Observer.
type Collector struct {
	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// generation
	generationRequestsTotal *prometheus.CounterVec
	generationDuration      *prometheus.HistogramVec
	structuredFallbacks     *prometheus.CounterVec
	parsePathTotal          *prometheus.CounterVec

	// transport
	providerAttemptsTotal *prometheus.CounterVec

	// discovery
	discoveryRequestsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector registers all metrics under namespace with the default
// Prometheus registerer.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Total number of structured generation requests",
		},
		[]string{"provider", "outcome", "classification"},
	)

	c.generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "End-to-end generation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 45, 90, 180, 360},
		},
		[]string{"provider", "outcome"},
	)

	c.structuredFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structured_mode_fallbacks_total",
			Help:      "Requests retried without structured mode after the backend rejected it",
		},
		[]string{"provider"},
	)

	c.parsePathTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_parse_path_total",
			Help:      "How model output was parsed: json, labeled or none",
		},
		[]string{"path"},
	)

	c.providerAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "HTTP attempts against generation backends",
		},
		[]string{"provider", "stage", "result"},
	)

	c.discoveryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_discovery_requests_total",
			Help:      "Model discovery requests",
		},
		[]string{"provider", "source", "outcome"},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 📝 Recording
// =============================================================================

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveAttempt records one transport attempt. result is "success" or the
// failure classification.
func (c *Collector) ObserveAttempt(provider, stage, result string) {
	c.providerAttemptsTotal.WithLabelValues(provider, stage, result).Inc()
}

// ObserveGeneration records the outcome of one orchestrator call.
// classification is empty on success.
func (c *Collector) ObserveGeneration(provider, outcome, classification string, duration time.Duration) {
	if provider == "" {
		provider = "offline"
	}
	c.generationRequestsTotal.WithLabelValues(provider, outcome, classification).Inc()
	c.generationDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

// ObserveStructuredFallback records a structured-mode downgrade.
func (c *Collector) ObserveStructuredFallback(provider string) {
	c.structuredFallbacks.WithLabelValues(provider).Inc()
}

// ObserveParsePath records which parser produced the content.
func (c *Collector) ObserveParsePath(path string) {
	if path == "" {
		path = "none"
	}
	c.parsePathTotal.WithLabelValues(path).Inc()
}

// ObserveDiscovery records one model discovery call.
func (c *Collector) ObserveDiscovery(provider, source, outcome string) {
	c.discoveryRequestsTotal.WithLabelValues(provider, source, outcome).Inc()
}

func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
