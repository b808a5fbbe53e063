// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachhub",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coachhub",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	reportsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachhub",
		Name:      "reports_rendered_total",
		Help:      "Report PDFs rendered by renderer and outcome.",
	}, []string{"renderer", "outcome"})

	reportRenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coachhub",
		Name:      "report_render_duration_seconds",
		Help:      "Time spent turning report data into a PDF.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"renderer"})

	reportFetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coachhub",
		Name:      "report_fetch_retries_total",
		Help:      "Retries of report data collection after transient errors.",
	})

	reportPartialFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachhub",
		Name:      "report_partial_fetch_total",
		Help:      "Peripheral report collections that failed and were left empty.",
	}, []string{"collection"})

	freeSlotsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coachhub",
		Name:      "free_teacher_slots_claimed_total",
		Help:      "Free teacher slots handed out.",
	})
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler { return promhttp.Handler() }

// Middleware records request counts and latency keyed by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ReportRendered records one render attempt.
func ReportRendered(renderer string, ok bool, d time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	reportsRendered.WithLabelValues(renderer, outcome).Inc()
	reportRenderDuration.WithLabelValues(renderer).Observe(d.Seconds())
}

// ReportFetchRetried counts one retry of report data collection.
func ReportFetchRetried() { reportFetchRetries.Inc() }

// ReportPartialFetch counts a peripheral collection left empty.
func ReportPartialFetch(collection string) {
	reportPartialFetches.WithLabelValues(collection).Inc()
}

// FreeSlotClaimed counts one slot handed out.
func FreeSlotClaimed() { freeSlotsClaimed.Inc() }
