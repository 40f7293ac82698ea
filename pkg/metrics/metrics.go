// Package metrics exposes Prometheus collectors for the HTTP layer and the
// review domain.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "review"

// Registry owns every collector so tests can build isolated instances
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ReviewsPosted   prometheus.Counter
	ReviewModerated *prometheus.CounterVec
	ProductsMerged  prometheus.Counter
	MergeDiscarded  prometheus.Counter
	AccessDenied    *prometheus.CounterVec
}

// New registers a fresh set of collectors
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ReviewsPosted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_posted_total",
			Help:      "Reviews created or replaced.",
		}),
		ReviewModerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_moderated_total",
			Help:      "Review status changes by resulting status.",
		}, []string{"status"}),
		ProductsMerged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_merged_total",
			Help:      "Completed product merges.",
		}),
		MergeDiscarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_discarded_reviews_total",
			Help:      "Reviews removed while merging products.",
		}),
		AccessDenied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_denied_total",
			Help:      "Authorization denials by error code.",
		}, []string{"code"}),
	}
}

// Gatherer exposes the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Nil-safe recorders used by the domain layer.

func (r *Registry) ReviewPosted() {
	if r != nil {
		r.ReviewsPosted.Inc()
	}
}

func (r *Registry) ReviewStatusChanged(status string) {
	if r != nil {
		r.ReviewModerated.WithLabelValues(status).Inc()
	}
}

func (r *Registry) ProductMerged(discarded int) {
	if r != nil {
		r.ProductsMerged.Inc()
		r.MergeDiscarded.Add(float64(discarded))
	}
}

func (r *Registry) Denied(code string) {
	if r != nil {
		r.AccessDenied.WithLabelValues(code).Inc()
	}
}
