// Package metrics defines the Prometheus collectors of the viability service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "viability"

// Recorder owns the service collectors. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	grpcRequests  *prometheus.CounterVec
	calculations  *prometheus.CounterVec
	ratings       *prometheus.CounterVec
	priceQuotes   *prometheus.CounterVec
	catalogGauges *prometheus.GaugeVec
}

// New creates a Recorder backed by its own registry, which also carries the
// Go runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		grpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "gRPC requests by method and status code.",
			},
			[]string{"method", "code"},
		),
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Completed calculations by operation.",
			},
			[]string{"operation"},
		),
		ratings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ratings_total",
				Help:      "Full viability results by rating tier.",
			},
			[]string{"tier"},
		),
		priceQuotes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_quotes_total",
				Help:      "BTC price quotes served by source (live, cached, fallback, static).",
			},
			[]string{"source"},
		),
		catalogGauges: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_entries",
				Help:      "Reference catalog entries by table.",
			},
			[]string{"table"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.grpcRequests,
		r.calculations,
		r.ratings,
		r.priceQuotes,
		r.catalogGauges,
	)
	return r
}

// Registry returns the registry the collectors are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveHTTP records one finished HTTP request.
func (r *Recorder) ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveGRPC records one finished gRPC call.
func (r *Recorder) ObserveGRPC(method, code string) {
	if r == nil {
		return
	}
	r.grpcRequests.WithLabelValues(method, code).Inc()
}

// ObserveCalculation records a completed calculation and, for full viability
// results, the rating tier.
func (r *Recorder) ObserveCalculation(operation, tier string) {
	if r == nil {
		return
	}
	r.calculations.WithLabelValues(operation).Inc()
	if tier != "" {
		r.ratings.WithLabelValues(tier).Inc()
	}
}

// ObservePriceQuote records the source of a served price quote.
func (r *Recorder) ObservePriceQuote(source string) {
	if r == nil {
		return
	}
	r.priceQuotes.WithLabelValues(source).Inc()
}

// SetCatalogCounts publishes the reference table sizes.
func (r *Recorder) SetCatalogCounts(counts map[string]int) {
	if r == nil {
		return
	}
	for table, n := range counts {
		r.catalogGauges.WithLabelValues(table).Set(float64(n))
	}
}
