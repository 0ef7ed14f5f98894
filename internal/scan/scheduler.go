// Package scan contains the portreach orchestration engine: the per-host
// scheduler that fans probes out under a concurrency cap, and the session
// driver that walks targets sequentially and aggregates results.
package scan

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"portreach/internal/logging"
	"portreach/internal/metrics"
	"portreach/internal/probe"
)

// HostScanner runs the full port list against a single host.
type HostScanner interface {
	ScanHost(ctx context.Context, host string, ports []int, reporter Reporter) (HostResult, error)
}

// Scheduler drives concurrent probes against one host at a time. Probes are
// dispatched for every port, gated by a semaphore of Concurrency slots; a
// slot is held for the probe's entire lifetime, including the banner read
// and close, never just the connect phase.
type Scheduler struct {
	prober      probe.Prober
	concurrency int
	active      int64
}

// NewScheduler creates a scheduler using the given prober and concurrency cap.
func NewScheduler(prober probe.Prober, concurrency int) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{prober: prober, concurrency: concurrency}
}

// ScanHost probes every port of one host. Outcomes are collected in
// completion order and open ports are reported to the Reporter as they
// arrive; the returned HostResult is re-sorted ascending by port so the
// final ordering is deterministic regardless of network timing. The only
// error returned is the context's, when the session is interrupted
// mid-host; individual probe failures are already collapsed into not-open
// outcomes by the prober.
func (s *Scheduler) ScanHost(ctx context.Context, host string, ports []int, reporter Reporter) (HostResult, error) {
	if reporter == nil {
		reporter = NopReporter{}
	}

	timer := metrics.NewTimer(metrics.MetricScanDuration, metrics.Labels{
		metrics.LabelTarget: host,
	})
	defer timer.Stop()

	sem := make(chan struct{}, s.concurrency)
	outcomes := make(chan probe.Outcome, len(ports))

	var wg sync.WaitGroup
	for _, port := range ports {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			setActiveProbes(atomic.AddInt64(&s.active, 1))
			defer func() {
				setActiveProbes(atomic.AddInt64(&s.active, -1))
				<-sem
			}()

			outcomes <- s.prober.Probe(ctx, host, port)
		}(port)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	result := make(HostResult, 0, len(ports))
	for out := range outcomes {
		result = append(result, out)
		if out.Open {
			logging.InfoScan("Open port discovered", host,
				"port", out.Port, "banner", out.Banner)
			reporter.PortOpen(host, out)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Port < result[j].Port })

	if err := ctx.Err(); err != nil {
		// Interrupted: probes that never acquired a slot are missing
		// from the result, which the session discards anyway.
		return result, err
	}
	return result, nil
}

// setActiveProbes mirrors the in-flight probe count to both metric layers.
func setActiveProbes(n int64) {
	metrics.Gauge(metrics.MetricActiveProbes, float64(n), nil)
	metrics.GetGlobalMetrics().SetActiveProbes(int(n))
}
