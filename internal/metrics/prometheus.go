// Prometheus collectors for portreach. These complement the in-process
// registry in metrics.go with real histogram buckets and the standard Go and
// process collectors, for callers that scrape or push.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "portreach"

	subsystemScan  = "scan"
	subsystemProbe = "probe"
)

// PrometheusMetrics holds all Prometheus metric collectors.
type PrometheusMetrics struct {
	// Per-probe metrics.
	probesTotal    *prometheus.CounterVec
	probeDuration  *prometheus.HistogramVec
	bannersGrabbed prometheus.Counter
	activeProbes   prometheus.Gauge

	// Per-session metrics.
	scansTotal   *prometheus.CounterVec
	scanDuration prometheus.Histogram
	hostsScanned *prometheus.CounterVec
	portsOpen    prometheus.Counter

	startTime time.Time
	registry  *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all
// collectors registered.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  registry,
	}

	pm.probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemProbe,
			Name:      "total",
			Help:      "Total number of port probes by outcome state",
		},
		[]string{"state"},
	)

	pm.probeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemProbe,
			Name:      "duration_seconds",
			Help:      "Duration of individual port probes in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"state"},
	)

	pm.bannersGrabbed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemProbe,
			Name:      "banners_total",
			Help:      "Total number of non-empty banners captured",
		},
	)

	pm.activeProbes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemProbe,
			Name:      "active",
			Help:      "Number of probes currently holding a concurrency slot",
		},
	)

	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "total",
			Help:      "Total number of scan sessions by status",
		},
		[]string{"status"},
	)

	pm.scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "duration_seconds",
			Help:      "Duration of whole scan sessions in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0},
		},
	)

	pm.hostsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "hosts_total",
			Help:      "Total number of hosts scanned by result status",
		},
		[]string{"status"},
	)

	pm.portsOpen = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "ports_open_total",
			Help:      "Total number of open ports discovered",
		},
	)

	registry.MustRegister(
		pm.probesTotal,
		pm.probeDuration,
		pm.bannersGrabbed,
		pm.activeProbes,
		pm.scansTotal,
		pm.scanDuration,
		pm.hostsScanned,
		pm.portsOpen,
	)

	// Standard Go and process collectors for runtime visibility.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

// GetRegistry returns the Prometheus registry for an HTTP handler or pusher.
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// IncrementProbes increments the probe counter for an outcome state.
func (pm *PrometheusMetrics) IncrementProbes(state string) {
	pm.probesTotal.WithLabelValues(state).Inc()
}

// RecordProbeDuration records how long a single probe took.
func (pm *PrometheusMetrics) RecordProbeDuration(state string, duration time.Duration) {
	pm.probeDuration.WithLabelValues(state).Observe(duration.Seconds())
}

// IncrementBanners increments the captured-banner counter.
func (pm *PrometheusMetrics) IncrementBanners() {
	pm.bannersGrabbed.Inc()
}

// SetActiveProbes sets the number of probes currently in flight.
func (pm *PrometheusMetrics) SetActiveProbes(count int) {
	pm.activeProbes.Set(float64(count))
}

// IncrementScansTotal increments the session counter by status.
func (pm *PrometheusMetrics) IncrementScansTotal(status string) {
	pm.scansTotal.WithLabelValues(status).Inc()
}

// RecordScanDuration records the duration of a whole session.
func (pm *PrometheusMetrics) RecordScanDuration(duration time.Duration) {
	pm.scanDuration.Observe(duration.Seconds())
}

// IncrementHostsScanned increments the host counter by result status.
func (pm *PrometheusMetrics) IncrementHostsScanned(status string) {
	pm.hostsScanned.WithLabelValues(status).Inc()
}

// AddPortsOpen adds to the open-port counter.
func (pm *PrometheusMetrics) AddPortsOpen(count int) {
	pm.portsOpen.Add(float64(count))
}

// GetUptime returns how long the collector set has been alive.
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// Global instance for easy access.
var (
	globalMetrics *PrometheusMetrics
	metricsOnce   sync.Once
)

// GetGlobalMetrics returns the global Prometheus metrics instance.
func GetGlobalMetrics() *PrometheusMetrics {
	metricsOnce.Do(func() {
		globalMetrics = NewPrometheusMetrics()
	})
	return globalMetrics
}
