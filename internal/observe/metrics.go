// Package observe provides application-wide observability primitives for
// SpeakBright: OpenTelemetry metrics, tracing, structured logging, and HTTP
// middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all SpeakBright
// metrics.
const meterName = "github.com/speakbright/speakbright"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// ScoreDuration tracks acoustic scoring latency (backend call or
	// heuristic) per analysis.
	ScoreDuration metric.Float64Histogram

	// AnalyzeDuration tracks end-to-end analysis latency from decoded audio
	// to assembled session result.
	AnalyzeDuration metric.Float64Histogram

	// --- Counters ---

	// BackendRequests counts acoustic backend calls. Use with attributes:
	//   attribute.String("backend", ...), attribute.String("status", ...)
	BackendRequests metric.Int64Counter

	// BackendErrors counts acoustic backend failures by backend name.
	BackendErrors metric.Int64Counter

	// HeuristicFallbacks counts analyses that fell back to the heuristic
	// scorer because no backend was configured or the backend failed.
	HeuristicFallbacks metric.Int64Counter

	// SessionsAnalyzed counts completed analyses. Use with attribute:
	//   attribute.String("word", ...)
	SessionsAnalyzed metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// an interactive scoring pipeline.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ScoreDuration, err = m.Float64Histogram("speakbright.score.duration",
		metric.WithDescription("Latency of acoustic scoring per analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AnalyzeDuration, err = m.Float64Histogram("speakbright.analyze.duration",
		metric.WithDescription("End-to-end analysis latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.BackendRequests, err = m.Int64Counter("speakbright.backend.requests",
		metric.WithDescription("Total acoustic backend requests by backend and status."),
	); err != nil {
		return nil, err
	}
	if met.BackendErrors, err = m.Int64Counter("speakbright.backend.errors",
		metric.WithDescription("Total acoustic backend errors by backend."),
	); err != nil {
		return nil, err
	}
	if met.HeuristicFallbacks, err = m.Int64Counter("speakbright.heuristic.fallbacks",
		metric.WithDescription("Total analyses scored by the heuristic fallback."),
	); err != nil {
		return nil, err
	}
	if met.SessionsAnalyzed, err = m.Int64Counter("speakbright.sessions.analyzed",
		metric.WithDescription("Total completed analyses by target word."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("speakbright.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordBackendRequest records an acoustic backend call with the standard
// attribute set.
func (m *Metrics) RecordBackendRequest(ctx context.Context, backend, status string) {
	m.BackendRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("status", status),
		),
	)
}

// RecordBackendError records an acoustic backend failure.
func (m *Metrics) RecordBackendError(ctx context.Context, backend string) {
	m.BackendErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("backend", backend)),
	)
}

// RecordSession records a completed analysis for the given target word.
func (m *Metrics) RecordSession(ctx context.Context, word string) {
	m.SessionsAnalyzed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("word", word)),
	)
}
