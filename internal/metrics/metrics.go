// Package metrics provides Prometheus instrumentation for kbo-gamecenter.
//
// A Recorder owns a private registry so tests and multiple instances never
// collide on the global one. Every method is safe on a nil *Recorder, which
// lets components run uninstrumented.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kbo"

// Recorder holds the collectors for the schedule cache, the realtime fetch
// layer, the report facade and the HTTP surface.
type Recorder struct {
	registry *prometheus.Registry

	collections   *prometheus.CounterVec
	bucketHits    prometheus.Counter
	gamesInserted prometheus.Counter

	detailRequests *prometheus.CounterVec
	attempts       *prometheus.CounterVec
	rateLimitWait  *prometheus.HistogramVec

	reports *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// New creates a Recorder backed by a fresh registry that also exposes the
// Go runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		collections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "collections_total",
			Help:      "Month schedule collections by result.",
		}, []string{"result"}),
		bucketHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "bucket_hits_total",
			Help:      "EnsureMonth calls answered by a fresh bucket.",
		}),
		gamesInserted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "games_inserted_total",
			Help:      "Schedule rows newly written to the store.",
		}),
		detailRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "requests_total",
			Help:      "Detail fetch requests by kind and outcome (hit, fetched, stale, failed).",
		}, []string{"kind", "outcome"}),
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "attempts_total",
			Help:      "Source fetch attempts by kind and result.",
		}, []string{"kind", "result"}),
		rateLimitWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the per-kind rate limiter.",
			Buckets:   []float64{0, .01, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"kind"}),
		reports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "built_total",
			Help:      "Realtime reports by status (fresh, stale, no_match, no_source).",
		}, []string{"status"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Registry returns the registry the collectors are registered with
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// CollectionSucceeded records a successful month collection
func (r *Recorder) CollectionSucceeded(inserted int64) {
	if r == nil {
		return
	}
	r.collections.WithLabelValues("success").Inc()
	r.gamesInserted.Add(float64(inserted))
}

// CollectionFailed records a collector or store failure
func (r *Recorder) CollectionFailed() {
	if r == nil {
		return
	}
	r.collections.WithLabelValues("failure").Inc()
}

// BucketHit records an EnsureMonth call that found a fresh bucket
func (r *Recorder) BucketHit() {
	if r == nil {
		return
	}
	r.bucketHits.Inc()
}

// DetailRequest records how a realtime fetch was answered
func (r *Recorder) DetailRequest(kind, outcome string) {
	if r == nil {
		return
	}
	r.detailRequests.WithLabelValues(kind, outcome).Inc()
}

// Attempt records one call to the detail source
func (r *Recorder) Attempt(kind string, err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	r.attempts.WithLabelValues(kind, result).Inc()
}

// RateLimitWait records time spent blocked on the limiter of kind
func (r *Recorder) RateLimitWait(kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.rateLimitWait.WithLabelValues(kind).Observe(d.Seconds())
}

// Report records a built realtime report
func (r *Recorder) Report(status string) {
	if r == nil {
		return
	}
	r.reports.WithLabelValues(status).Inc()
}

// HTTPRequest records one served HTTP request
func (r *Recorder) HTTPRequest(method, path string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, path).Observe(d.Seconds())
}
