package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	AuthFailuresTotal *prometheus.CounterVec
	AuthEventsTotal   *prometheus.CounterVec

	// Cache metrics
	CacheRequestsTotal *prometheus.CounterVec

	// Photo metrics
	PhotoPurgesTotal *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go runtime
// collectors, on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whiskr_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "whiskr_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		AuthFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whiskr_auth_failures_total",
				Help: "Requests rejected by the auth gate, by reason",
			},
			[]string{"reason"},
		),
		AuthEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whiskr_auth_events_total",
				Help: "Registrations and logins, by outcome",
			},
			[]string{"event", "result"},
		),

		CacheRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whiskr_cache_requests_total",
				Help: "Recipe cache lookups, by result",
			},
			[]string{"result"},
		),

		PhotoPurgesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whiskr_photo_purges_total",
				Help: "Background photo deletions, by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthFailuresTotal,
		m.AuthEventsTotal,
		m.CacheRequestsTotal,
		m.PhotoPurgesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RegisterDB exports connection pool statistics of db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) AuthFailure(reason string) {
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) AuthEvent(event string, err error) {
	m.AuthEventsTotal.WithLabelValues(event, result(err)).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if hit {
		m.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return
	}
	m.CacheRequestsTotal.WithLabelValues("miss").Inc()
}

func (m *Metrics) PhotoPurge(err error) {
	m.PhotoPurgesTotal.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
