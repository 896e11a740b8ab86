package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harrylevesque/navshell/internal/shell"
)

// Metrics holds the shell's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reloads  prometheus.Counter
	version  prometheus.Gauge
	routes   prometheus.Gauge
}

func NewMetrics(sh *shell.Shell) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navshell_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navshell_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navshell_menu_reloads_total",
			Help: "Menu configurations applied since start.",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "navshell_menu_version",
			Help: "Version of the menu snapshot currently served.",
		}),
		routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "navshell_mounted_routes",
			Help: "App routes in the current route table.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.reloads, m.version, m.routes,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "navshell_sessions",
			Help: "Live shell sessions.",
		}, func() float64 { return float64(sh.Sessions().Len()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "navshell_app_list_recomputations_total",
			Help: "Times the flat app list was rebuilt from a new menu.",
		}, func() float64 { return float64(sh.Recomputations()) }),
	)
	m.observeSnapshot(sh.Snapshot())
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeRequest(route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) observeSnapshot(snap *shell.Snapshot) {
	m.version.Set(float64(snap.Version))
	m.routes.Set(float64(snap.Mounts.Len()))
}

// Watch records every snapshot sh publishes until ctx is done.
func (m *Metrics) Watch(ctx context.Context, sh *shell.Shell) {
	snaps, unsubscribe := sh.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			m.reloads.Inc()
			m.observeSnapshot(snap)
		}
	}
}
