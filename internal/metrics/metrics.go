// Package metrics exposes Prometheus instrumentation for the dashboard shell.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "joblink"

// Metrics holds the dashboard collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	navigations *prometheus.CounterVec
	logouts     prometheus.Counter
	shells      prometheus.Gauge
}

// New creates collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resolutions_total",
			Help:      "Session resolution attempts by outcome.",
		}, []string{"outcome"}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Navigation dispatches by view and kind (view, external, normalized).",
		}, []string{"view", "kind"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Completed logouts.",
		}),
		shells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mounted_shells",
			Help:      "Dashboard shells currently mounted.",
		}),
	}
	m.registry.MustRegister(
		m.resolutions,
		m.navigations,
		m.logouts,
		m.shells,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResolution counts one resolution attempt.
func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

// ObserveNavigation counts one navigation dispatch.
func (m *Metrics) ObserveNavigation(view, kind string) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(view, kind).Inc()
}

// ObserveLogout counts one logout.
func (m *Metrics) ObserveLogout() {
	if m == nil {
		return
	}
	m.logouts.Inc()
}

// ShellMounted adjusts the mounted shell gauge.
func (m *Metrics) ShellMounted(delta float64) {
	if m == nil {
		return
	}
	m.shells.Add(delta)
}
