// Package metrics exposes mirror health as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-mirror/pkg/camera"
)

// Metrics holds all application metrics
type Metrics struct {
	// Tracking loop counters
	TrackingTicks  atomic.Uint64
	TrackingMisses atomic.Uint64
	TrackingErrors atomic.Uint64

	// Controller state
	TrackingEnabled    atomic.Uint64 // 0 = off, 1 = on
	Streaming          atomic.Uint64 // 0 = demo, 1 = live camera
	SnapshotsPublished atomic.Uint64

	// Dashboard clients
	WSClients atomic.Int64

	attempts    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	refreshes   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_camera_attempts_total",
			Help: "Camera acquisition attempts by constraint tier and result",
		}, []string{"tier", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_camera_transitions_total",
			Help: "Camera status transitions by new status",
		}, []string{"status"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_widget_refreshes_total",
			Help: "Dashboard widget refreshes by widget and result",
		}, []string{"widget", "result"}),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(m.attempts, m.transitions, m.refreshes)

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "mirror_tracking_ticks_total",
			Help: "Total face tracking ticks",
		},
		func() float64 { return float64(m.TrackingTicks.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "mirror_tracking_misses_total",
			Help: "Ticks that found no face",
		},
		func() float64 { return float64(m.TrackingMisses.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "mirror_tracking_errors_total",
			Help: "Ticks whose face source failed",
		},
		func() float64 { return float64(m.TrackingErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "mirror_snapshots_published_total",
			Help: "Snapshots delivered to subscribers",
		},
		func() float64 { return float64(m.SnapshotsPublished.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "mirror_tracking_enabled",
			Help: "Face tracking enabled (0=off, 1=on)",
		},
		func() float64 { return float64(m.TrackingEnabled.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "mirror_camera_streaming",
			Help: "Live camera stream active (0=demo, 1=live)",
		},
		func() float64 { return float64(m.Streaming.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "mirror_ws_clients",
			Help: "Connected dashboard websocket clients",
		},
		func() float64 { return float64(m.WSClients.Load()) },
	))
}

// ObserveTick records one tracking tick. Use as a tracking.ObserveFunc.
func (m *Metrics) ObserveTick(faces int, err error) {
	m.TrackingTicks.Add(1)
	switch {
	case err != nil:
		m.TrackingErrors.Add(1)
	case faces == 0:
		m.TrackingMisses.Add(1)
	}
}

// ObserveAttempt records one constraint tier attempt. Use as a camera.AttemptFunc.
func (m *Metrics) ObserveAttempt(tier string, err error) {
	result := "ok"
	if err != nil {
		status, _ := camera.Classify(err)
		result = string(status)
	}
	m.attempts.WithLabelValues(tier, result).Inc()
}

// ObserveRefresh records one widget refresh.
func (m *Metrics) ObserveRefresh(widget string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(widget, result).Inc()
}

// ClientsChanged adjusts the websocket client gauge by delta.
func (m *Metrics) ClientsChanged(delta int) {
	m.WSClients.Add(int64(delta))
}

// StatusChanged implements mirror.Observer.
func (m *Metrics) StatusChanged(status camera.Status) {
	m.transitions.WithLabelValues(string(status)).Inc()
}

// StreamingChanged implements mirror.Observer.
func (m *Metrics) StreamingChanged(streaming bool) {
	m.Streaming.Store(boolToUint(streaming))
}

// TrackingChanged implements mirror.Observer.
func (m *Metrics) TrackingChanged(enabled bool) {
	m.TrackingEnabled.Store(boolToUint(enabled))
}

// SnapshotPublished implements mirror.Observer.
func (m *Metrics) SnapshotPublished() {
	m.SnapshotsPublished.Add(1)
}

// Registry exposes the private registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
