package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riegolab/riego/internal/health"
)

var (
	// Schedule mutations

	MutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riego",
		Name:      "agenda_mutations_total",
		Help:      "Total agenda mutations, by operation and outcome.",
	}, []string{"operation", "outcome"})

	// MQTT traffic

	SyncPublishesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riego",
		Name:      "sync_publishes_total",
		Help:      "Total schedule snapshot broadcasts, by outcome.",
	}, []string{"outcome"})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riego",
		Name:      "commands_total",
		Help:      "Total zone commands published, by action and outcome.",
	}, []string{"accion", "outcome"})

	StatusReportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "riego",
		Name:      "status_reports_total",
		Help:      "Total zone status reports accepted from controllers.",
	})

	EventsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "riego",
		Name:      "events_recorded_total",
		Help:      "Total watering events persisted.",
	})

	// Resync broadcaster

	ResyncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riego",
		Name:      "resync_runs_total",
		Help:      "Total scheduled resync sweeps, by outcome.",
	}, []string{"outcome"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "riego",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riego",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		MutationsTotal,
		SyncPublishesTotal,
		CommandsTotal,
		StatusReportsTotal,
		EventsRecordedTotal,
		ResyncRunsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer builds the operational endpoint server: Prometheus scrape plus
// liveness and readiness probes. It runs on its own port so probes stay
// reachable even when the API server is saturated.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
