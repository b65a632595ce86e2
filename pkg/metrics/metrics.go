package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the Prometheus collectors of the service
// ⭐ SSOT: metric names are declared here only
type Recorder struct {
	registry *prometheus.Registry

	summariesCreated *prometheus.CounterVec
	summaryLookups   *prometheus.CounterVec
	summaryFailures  *prometheus.CounterVec
	computeDuration  *prometheus.HistogramVec
	sourceReadings   *prometheus.CounterVec
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		summariesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vreflex",
			Name:      "summaries_created_total",
			Help:      "Daily summaries persisted, by data source.",
		}, []string{"source"}),
		summaryLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vreflex",
			Name:      "summary_lookups_total",
			Help:      "Summary requests answered from an existing entry, by layer (redis, database).",
		}, []string{"layer"}),
		summaryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vreflex",
			Name:      "summary_failures_total",
			Help:      "Summary computations that failed, by reason.",
		}, []string{"reason"}),
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vreflex",
			Name:      "summary_compute_seconds",
			Help:      "Time spent fetching and computing one daily summary.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		sourceReadings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vreflex",
			Name:      "source_readings_total",
			Help:      "Raw readings returned by data sources.",
		}, []string{"source"}),
	}

	r.registry.MustRegister(
		r.summariesCreated,
		r.summaryLookups,
		r.summaryFailures,
		r.computeDuration,
		r.sourceReadings,
		collectors.NewGoCollector(),
	)
	return r
}

// SummaryCreated counts a persisted summary
func (r *Recorder) SummaryCreated(source string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.summariesCreated.WithLabelValues(source).Inc()
	r.computeDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// SummaryHit counts a request served without computation
func (r *Recorder) SummaryHit(layer string) {
	if r == nil {
		return
	}
	r.summaryLookups.WithLabelValues(layer).Inc()
}

// SummaryFailed counts a failed computation
func (r *Recorder) SummaryFailed(reason string) {
	if r == nil {
		return
	}
	r.summaryFailures.WithLabelValues(reason).Inc()
}

// ReadingsFetched counts raw readings returned by a source
func (r *Recorder) ReadingsFetched(source string, n int) {
	if r == nil {
		return
	}
	r.sourceReadings.WithLabelValues(source).Add(float64(n))
}

// Registry exposes the registry (tests, custom exporters)
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
