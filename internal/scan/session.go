package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"portreach/internal/errors"
	"portreach/internal/logging"
	"portreach/internal/metrics"
	"portreach/internal/probe"
)

// Session drives a whole scan: targets strictly in order, one host at a
// time, each wrapped in a recoverable boundary so a failing host never
// aborts the rest of the run.
type Session struct {
	id       uuid.UUID
	scanner  HostScanner
	reporter Reporter
	log      *logging.Logger
}

// NewSession builds a session around a standard connect-prober scheduler.
func NewSession(cfg Config, reporter Reporter) *Session {
	prober := probe.NewDialer(cfg.Timeout, cfg.Banner)
	return NewSessionWithScanner(NewScheduler(prober, cfg.Concurrency), reporter)
}

// NewSessionWithScanner builds a session around a caller-supplied host
// scanner. Tests use this to substitute failing or instrumented scanners.
func NewSessionWithScanner(scanner HostScanner, reporter Reporter) *Session {
	if reporter == nil {
		reporter = NopReporter{}
	}
	id := uuid.New()
	return &Session{
		id:       id,
		scanner:  scanner,
		reporter: reporter,
		log:      logging.Default().WithScanID(id.String()),
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Run scans every target in order and returns the accumulated results.
// Host N+1 does not start until host N is fully done, progressive reporting
// included. A host whose scan fails is logged and skipped: no entry is
// recorded for it. Cancellation aborts the whole session; the partial
// result set collected so far is returned together with the context error.
func (s *Session) Run(ctx context.Context, targets []string, ports []int) (*SessionResult, error) {
	start := time.Now()
	result := NewSessionResult()

	s.log.Info("Scan session starting",
		"targets", len(targets), "ports", len(ports))

	status := "success"
	defer func() {
		pm := metrics.GetGlobalMetrics()
		pm.RecordScanDuration(time.Since(start))
		pm.IncrementScansTotal(status)
	}()

	for _, host := range targets {
		if err := ctx.Err(); err != nil {
			status = "interrupted"
			s.log.Warn("Scan session interrupted", "completed_hosts", result.Len())
			return result, err
		}

		s.reporter.ScanStarted(host, len(ports))

		hostResult, err := s.scanHost(ctx, host, ports)
		if err != nil {
			if ctx.Err() != nil {
				status = "interrupted"
				s.log.Warn("Scan session interrupted", "completed_hosts", result.Len())
				return result, ctx.Err()
			}
			// Recoverable boundary: report and move to the next host.
			s.log.ErrorScan("Host scan failed", host, err)
			metrics.GetGlobalMetrics().IncrementHostsScanned("error")
			continue
		}

		result.Add(host, hostResult)
		s.reporter.HostDone(host, hostResult)

		open := hostResult.OpenCount()
		metrics.GetGlobalMetrics().IncrementHostsScanned("ok")
		metrics.GetGlobalMetrics().AddPortsOpen(open)
		s.log.InfoScan("Host scan finished", host,
			"open", open, "checked", len(hostResult))
	}

	s.log.Info("Scan session complete",
		"hosts", result.Len(), "duration", time.Since(start))
	return result, nil
}

// scanHost runs one host scan behind a panic boundary, so a defect in the
// scheduling path surfaces as a per-host error instead of tearing down the
// session.
func (s *Session) scanHost(ctx context.Context, host string, ports []int) (result HostResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.WrapScanErrorWithTarget(errors.CodeScanFailed,
				"host scan panicked", host, fmt.Errorf("%v", r))
		}
	}()
	return s.scanner.ScanHost(ctx, host, ports, s.reporter)
}
