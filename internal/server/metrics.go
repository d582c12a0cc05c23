package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/beerxml/pkg/observability"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beerxml_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beerxml_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beerxml_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	rateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beerxml_rate_limit_rejects_total",
			Help: "Total number of requests rejected due to rate limiting",
		},
	)

	panicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beerxml_panic_recoveries_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)

	documentLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beerxml_document_loads_total",
			Help: "Documents fetched and parsed, by outcome",
		},
		[]string{"outcome"},
	)

	documentLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "beerxml_document_load_duration_seconds",
			Help:    "Time to fetch and parse a document",
			Buckets: prometheus.DefBuckets,
		},
	)

	recipeCacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beerxml_recipe_cache_events_total",
			Help: "Recipe cache lookups and writes by backend and event",
		},
		[]string{"backend", "event"},
	)

	recipeCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beerxml_recipe_cache_errors_total",
			Help: "Cache backend failures that fell back to loading directly",
		},
		[]string{"backend", "op"},
	)

	fetchBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beerxml_fetch_bytes_total",
			Help: "Bytes read from document sources",
		},
		[]string{"scheme"},
	)

	fetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beerxml_fetch_errors_total",
			Help: "Failed document fetches",
		},
		[]string{"scheme"},
	)
)

// promHooks records pipeline events as Prometheus metrics.
type promHooks struct{}

var (
	_ observability.LoadHooks  = promHooks{}
	_ observability.CacheHooks = promHooks{}
	_ observability.FetchHooks = promHooks{}
)

// RegisterMetricsHooks routes observability events to the /metrics
// collectors. Call it once at startup.
func RegisterMetricsHooks() {
	observability.SetLoadHooks(promHooks{})
	observability.SetCacheHooks(promHooks{})
	observability.SetFetchHooks(promHooks{})
}

func (promHooks) OnLoadStart(context.Context, string) {}

func (promHooks) OnLoadComplete(_ context.Context, _ string, recipes int, d time.Duration, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case recipes == 0:
		outcome = "empty"
	}
	documentLoads.WithLabelValues(outcome).Inc()
	documentLoadDuration.Observe(d.Seconds())
}

func (promHooks) OnCacheHit(_ context.Context, backend string) {
	recipeCacheEvents.WithLabelValues(backend, "hit").Inc()
}

func (promHooks) OnCacheMiss(_ context.Context, backend string) {
	recipeCacheEvents.WithLabelValues(backend, "miss").Inc()
}

func (promHooks) OnCacheSet(_ context.Context, backend string, _ int) {
	recipeCacheEvents.WithLabelValues(backend, "set").Inc()
}

func (promHooks) OnCacheError(_ context.Context, backend, op string, _ error) {
	recipeCacheErrors.WithLabelValues(backend, op).Inc()
}

func (promHooks) OnFetch(_ context.Context, scheme string, size int, _ time.Duration, err error) {
	if err != nil {
		fetchErrors.WithLabelValues(scheme).Inc()
		return
	}
	fetchBytes.WithLabelValues(scheme).Add(float64(size))
}
