// metrics/metrics.go
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coregate",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by coregate",
		},
		[]string{"route", "method", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coregate",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests handled by coregate",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coregate",
			Name:      "cache_hits_total",
			Help:      "Total resolver cache hits",
		},
		[]string{"resolver"},
	)

	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coregate",
			Name:      "cache_misses_total",
			Help:      "Total resolver cache misses",
		},
		[]string{"resolver"},
	)

	cacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coregate",
			Name:      "cache_errors_total",
			Help:      "Cache reads or writes that failed and were bypassed",
		},
		[]string{"resolver", "op"},
	)

	authorityDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coregate",
			Name:      "authority_request_duration_seconds",
			Help:      "Duration of calls to the flag and credential authorities",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"authority", "outcome"},
	)

	authDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coregate",
			Name:      "signature_decisions_total",
			Help:      "Signature verification outcomes",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestTotal, requestDuration, cacheHits, cacheMisses,
			cacheErrors, authorityDuration, authDecisions)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequest(route, method, code string, d time.Duration) {
	requestTotal.WithLabelValues(route, method, code).Inc()
	requestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func IncCacheHit(resolver string) {
	cacheHits.WithLabelValues(resolver).Inc()
}

func IncCacheMiss(resolver string) {
	cacheMisses.WithLabelValues(resolver).Inc()
}

func IncCacheError(resolver, op string) {
	cacheErrors.WithLabelValues(resolver, op).Inc()
}

func ObserveAuthority(authority, outcome string, d time.Duration) {
	authorityDuration.WithLabelValues(authority, outcome).Observe(d.Seconds())
}

func IncAuthDecision(outcome string) {
	authDecisions.WithLabelValues(outcome).Inc()
}
