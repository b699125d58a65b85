// Package metrics exposes Prometheus collectors for the resolver service.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	resolutionsTotal          *prometheus.CounterVec
	stageDurationSeconds      *prometheus.HistogramVec
	cacheLookupsTotal         *prometheus.CounterVec
	unrecognizedDomainsTotal  *prometheus.CounterVec
	rendererFallbacksTotal    *prometheus.CounterVec
	httpRequestDurationSecond *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		resolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolver_resolutions_total",
				Help: "Total number of URL resolutions, labeled by primary source and domain.",
			},
			[]string{"source", "domain"},
		)

		stageDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resolver_stage_duration_seconds",
				Help:    "Histogram of per-stage latencies, labeled by stage.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"stage"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolver_cache_lookups_total",
				Help: "Total number of result cache lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		unrecognizedDomainsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolver_unrecognized_domains_total",
				Help: "Total number of resolutions hitting domains absent from the brand index.",
			},
			[]string{"domain"},
		)

		rendererFallbacksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolver_renderer_fallbacks_total",
				Help: "Total number of rendering fallback invocations, labeled by renderer and outcome.",
			},
			[]string{"renderer", "outcome"},
		)

		httpRequestDurationSecond = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeDomain sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeDomain(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveResolution increments the resolution counter for a finished pipeline run.
func ObserveResolution(source string, rawURL string) {
	if resolutionsTotal == nil {
		return
	}
	resolutionsTotal.WithLabelValues(source, SanitizeDomain(rawURL)).Inc()
}

// ObserveStage records the latency of a single pipeline stage.
func ObserveStage(stage string, d time.Duration) {
	if stageDurationSeconds == nil {
		return
	}
	stageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveCacheLookup counts a cache hit or miss.
func ObserveCacheLookup(hit bool) {
	if cacheLookupsTotal == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUnrecognizedDomain counts a domain the brand index could not map.
func ObserveUnrecognizedDomain(domain string) {
	if unrecognizedDomainsTotal == nil {
		return
	}
	unrecognizedDomainsTotal.WithLabelValues(strings.ToLower(domain)).Inc()
}

// ObserveRendererFallback counts a renderer invocation and its outcome.
func ObserveRendererFallback(renderer string, ok bool) {
	if rendererFallbacksTotal == nil {
		return
	}
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	rendererFallbacksTotal.WithLabelValues(renderer, outcome).Inc()
}

// ObserveHTTPRequest records API request latency.
func ObserveHTTPRequest(method, route string, d time.Duration) {
	if httpRequestDurationSecond == nil {
		return
	}
	httpRequestDurationSecond.WithLabelValues(method, route).Observe(d.Seconds())
}
