// Package metrics holds the Prometheus collectors shared by the API server
// and the worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "conti"

var (
	// httpRequests counts served requests.
	// Labels: method, route (the mux pattern), status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests served",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Requests currently being served",
	})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter",
	})

	// events counts domain events by stage.
	// Labels: stage (published, processed), type, result (ok, error)
	events = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "total",
		Help:      "Domain events published and processed",
	}, []string{"stage", "type", "result"})

	ledgerRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "rows_total",
		Help:      "Ledger rows appended to the export sheet",
	}, []string{"result"})

	// maintenance counts periodic task runs.
	// Labels: task (expire_invitations, purge_sessions, reconcile_cards), result
	maintenance = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "maintenance",
		Name:      "runs_total",
		Help:      "Maintenance task runs",
	}, []string{"task", "result"})
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns its release.
func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

func RateLimited() { rateLimited.Inc() }

func EventPublished(eventType string, err error) {
	events.WithLabelValues("published", eventType, result(err)).Inc()
}

func EventProcessed(eventType string, err error) {
	events.WithLabelValues("processed", eventType, result(err)).Inc()
}

func LedgerAppend(err error) { ledgerRows.WithLabelValues(result(err)).Inc() }

func MaintenanceRun(task string, err error) {
	maintenance.WithLabelValues(task, result(err)).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
