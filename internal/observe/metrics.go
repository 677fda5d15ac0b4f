// Package observe provides application-wide observability primitives for
// haaldus: OpenTelemetry metrics, tracing, structured logging, and HTTP
// middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all haaldus metrics.
const meterName = "github.com/mkeskkula/haaldus"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// TranscriptionDuration tracks ASR transcription latency.
	TranscriptionDuration metric.Float64Histogram

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("route", ...)
	// where route is the matched mux pattern path, not the raw URL.
	HTTPRequestDuration metric.Float64Histogram

	// ScoreRequests counts scoring calls. Use with attributes:
	//   attribute.String("input", "audio"|"text"), attribute.String("status", ...)
	ScoreRequests metric.Int64Counter

	// AchievementUnlocks counts first-time achievement awards. Use with attribute:
	//   attribute.String("type", ...)
	AchievementUnlocks metric.Int64Counter

	// RecordingUploads counts stored practice recordings.
	RecordingUploads metric.Int64Counter

	// ASRErrors counts failed transcription attempts. Use with attribute:
	//   attribute.String("kind", "unavailable"|"failed")
	ASRErrors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). The upper
// buckets cover batch whisper inference on CPU.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TranscriptionDuration, err = m.Float64Histogram("haaldus.transcription.duration",
		metric.WithDescription("Latency of ASR transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("haaldus.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if met.ScoreRequests, err = m.Int64Counter("haaldus.score.requests",
		metric.WithDescription("Total scoring calls by input kind and status."),
	); err != nil {
		return nil, err
	}
	if met.AchievementUnlocks, err = m.Int64Counter("haaldus.achievement.unlocks",
		metric.WithDescription("Total first-time achievement awards by type."),
	); err != nil {
		return nil, err
	}
	if met.RecordingUploads, err = m.Int64Counter("haaldus.recording.uploads",
		metric.WithDescription("Total stored practice recordings."),
	); err != nil {
		return nil, err
	}
	if met.ASRErrors, err = m.Int64Counter("haaldus.asr.errors",
		metric.WithDescription("Total failed transcription attempts by kind."),
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
			panic("observe: create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}
