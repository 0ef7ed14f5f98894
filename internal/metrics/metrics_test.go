package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterIncrements(t *testing.T) {
	r := NewRegistry()

	r.Counter(MetricProbesTotal, Labels{LabelState: "open"})
	r.Counter(MetricProbesTotal, Labels{LabelState: "open"})
	r.Counter(MetricProbesTotal, Labels{LabelState: "closed"})

	metrics := r.GetMetrics()
	require.Len(t, metrics, 2)

	var open, closed float64
	for _, m := range metrics {
		assert.Equal(t, TypeCounter, m.Type)
		switch m.Labels[LabelState] {
		case "open":
			open = m.Value
		case "closed":
			closed = m.Value
		}
	}
	assert.Equal(t, 2.0, open)
	assert.Equal(t, 1.0, closed)
}

func TestGaugeOverwrites(t *testing.T) {
	r := NewRegistry()

	r.Gauge(MetricActiveProbes, 5, nil)
	r.Gauge(MetricActiveProbes, 2, nil)

	metrics := r.GetMetrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, 2.0, metrics[MetricActiveProbes].Value)
	assert.Equal(t, TypeGauge, metrics[MetricActiveProbes].Type)
}

func TestHistogramKeepsLastObservation(t *testing.T) {
	r := NewRegistry()

	r.Histogram(MetricScanDuration, 0.5, nil)
	r.Histogram(MetricScanDuration, 1.25, nil)

	metrics := r.GetMetrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, 1.25, metrics[MetricScanDuration].Value)
}

func TestDisabledRegistryRecordsNothing(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(false)

	r.Counter(MetricProbesTotal, nil)
	r.Gauge(MetricActiveProbes, 1, nil)
	r.Histogram(MetricScanDuration, 1, nil)

	assert.Empty(t, r.GetMetrics())
	assert.False(t, r.IsEnabled())
}

func TestReset(t *testing.T) {
	r := NewRegistry()
	r.Counter(MetricProbesTotal, nil)
	require.Len(t, r.GetMetrics(), 1)

	r.Reset()
	assert.Empty(t, r.GetMetrics())
}

func TestGetMetricsReturnsCopies(t *testing.T) {
	r := NewRegistry()
	r.Counter(MetricProbesTotal, Labels{LabelState: "open"})

	snapshot := r.GetMetrics()
	for _, m := range snapshot {
		m.Value = 999
		m.Labels[LabelState] = "mutated"
	}

	for _, m := range r.GetMetrics() {
		assert.Equal(t, 1.0, m.Value)
		assert.Equal(t, "open", m.Labels[LabelState])
	}
}

func TestTimerRecordsHistogram(t *testing.T) {
	defer Reset()
	Reset()

	timer := NewTimer(MetricScanDuration, Labels{LabelTarget: "10.0.0.1"})
	time.Sleep(5 * time.Millisecond)
	timer.Stop()

	found := false
	for _, m := range GetMetrics() {
		if m.Name == MetricScanDuration {
			found = true
			assert.Equal(t, TypeHistogram, m.Type)
			assert.Greater(t, m.Value, 0.0)
		}
	}
	assert.True(t, found)
}

func TestGlobalPrometheusMetrics(t *testing.T) {
	pm := GetGlobalMetrics()
	require.NotNil(t, pm)

	// Singleton: repeated calls return the same instance.
	assert.Same(t, pm, GetGlobalMetrics())

	pm.IncrementProbes("open")
	pm.IncrementBanners()
	pm.SetActiveProbes(3)
	pm.RecordProbeDuration("open", 10*time.Millisecond)
	pm.IncrementScansTotal("success")
	pm.RecordScanDuration(time.Second)
	pm.IncrementHostsScanned("ok")
	pm.AddPortsOpen(4)

	assert.Greater(t, pm.GetUptime(), time.Duration(0))
	assert.NotNil(t, pm.GetRegistry())
}
