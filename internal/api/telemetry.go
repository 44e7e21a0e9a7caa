package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/recipescope/recipescope/pkg/metrics"
)

var (
	// evaluationsTotal counts recorded evaluations by verdict
	// (qualified, unqualified, no_data).
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipescope_evaluations_total",
		Help: "Total report evaluations by verdict",
	}, []string{"verdict"})

	// unstableTotal counts evaluations that marked the build unstable.
	unstableTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipescope_unstable_evaluations_total",
		Help: "Total evaluations that marked the build unstable",
	})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recipescope_evaluation_duration_seconds",
		Help:    "Time to store, evaluate and record one report",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	reportCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipescope_report_cache_lookups_total",
		Help: "Report cache lookups by result (hit, miss)",
	}, []string{"result"})

	rescoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipescope_rescore_failures_total",
		Help: "Total reports that failed to re-evaluate",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipescope_http_requests_total",
		Help: "HTTP requests by method and status code",
	}, []string{"method", "code"})
)

func verdictLabel(result *metrics.Result) string {
	switch {
	case !result.Metrics.Available():
		return "no_data"
	case result.Qualified:
		return "qualified"
	default:
		return "unqualified"
	}
}

func observeEvaluation(result *metrics.Result, started time.Time) {
	evaluationDuration.Observe(time.Since(started).Seconds())
	evaluationsTotal.WithLabelValues(verdictLabel(result)).Inc()
	if !result.Stable {
		unstableTotal.Inc()
	}
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
