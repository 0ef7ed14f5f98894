// Package probe performs single TCP connect probes with optional banner
// grabbing. Every failure mode collapses into a not-open outcome: the
// scheduler above never sees an error from a probe, only a classification.
package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"portreach/internal/logging"
	"portreach/internal/metrics"
)

const (
	// bannerReadBytes caps a banner grab to the first bytes a service
	// volunteers after connect.
	bannerReadBytes = 1024

	// bannerReadCap bounds the banner read independently of the connect
	// timeout; the effective deadline is min(bannerReadCap, timeout).
	bannerReadCap = 500 * time.Millisecond
)

// State classifies why a port is or is not open. The serialized result model
// only carries Open; State feeds logging and metrics labels.
type State string

const (
	StateOpen     State = "open"
	StateClosed   State = "closed"
	StateFiltered State = "filtered"
)

// Outcome is the result of one probe against one port.
type Outcome struct {
	Port   int    `json:"port"`
	Open   bool   `json:"open"`
	Banner string `json:"banner"`

	// State is diagnostic detail only and stays out of serialized output.
	State State `json:"-"`
}

// Prober performs a single timed connect attempt against one port.
type Prober interface {
	Probe(ctx context.Context, host string, port int) Outcome
}

// Dialer is the standard TCP connect prober. The zero value is not usable;
// construct it with NewDialer.
type Dialer struct {
	timeout    time.Duration
	grabBanner bool
}

// NewDialer creates a prober with the given per-connection timeout and
// banner-grabbing mode.
func NewDialer(timeout time.Duration, grabBanner bool) *Dialer {
	return &Dialer{timeout: timeout, grabBanner: grabBanner}
}

// Probe attempts one TCP connection to host:port. Timeouts, refusals,
// resolution failures and every other connect error collapse into a
// not-open outcome; a banner failure never downgrades an open port. The
// connection is closed on every path before returning.
func (d *Dialer) Probe(ctx context.Context, host string, port int) Outcome {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	start := time.Now()

	dialer := net.Dialer{Timeout: d.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		state := classify(err)
		logging.Debug("Probe did not connect",
			"target", host, "port", port, "state", string(state), "error", err)
		recordProbe(state, time.Since(start))
		return Outcome{Port: port, State: state}
	}
	// Close must never surface an error to the caller.
	defer func() { _ = conn.Close() }()

	out := Outcome{Port: port, Open: true, State: StateOpen}
	if d.grabBanner {
		out.Banner = d.readBanner(conn)
		if out.Banner != "" {
			metrics.Counter(metrics.MetricBannersGrabbed, nil)
			metrics.GetGlobalMetrics().IncrementBanners()
		}
	}

	recordProbe(StateOpen, time.Since(start))
	return out
}

// recordProbe feeds one probe outcome to both metric layers.
func recordProbe(state State, duration time.Duration) {
	metrics.Counter(metrics.MetricProbesTotal, metrics.Labels{
		metrics.LabelState: string(state),
	})
	metrics.Histogram(metrics.MetricProbeDuration, duration.Seconds(), metrics.Labels{
		metrics.LabelState: string(state),
	})

	pm := metrics.GetGlobalMetrics()
	pm.IncrementProbes(string(state))
	pm.RecordProbeDuration(string(state), duration)
}

// readBanner attempts a single bounded read of whatever the service sends
// unprompted. Any failure, including a deadline miss, yields an empty banner.
func (d *Dialer) readBanner(conn net.Conn) string {
	deadline := bannerReadCap
	if d.timeout < deadline {
		deadline = d.timeout
	}
	if err := conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
		return ""
	}

	buf := make([]byte, bannerReadBytes)
	n, _ := conn.Read(buf)
	if n <= 0 {
		return ""
	}

	return strings.TrimSpace(decodeBanner(buf[:n]))
}

// decodeBanner decodes service output permissively: every byte that is not
// part of a valid UTF-8 sequence becomes its own replacement rune, so a raw
// binary greeting stays byte-for-byte accountable in the output.
func decodeBanner(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		b.WriteRune(r)
		raw = raw[size:]
	}
	return b.String()
}

// classify maps a connect error to a diagnostic state. Refusals mean the
// host answered with a reset; everything else, timeouts included, is
// indistinguishable from a filtering device and lands in StateFiltered.
func classify(err error) State {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return StateClosed
	}
	return StateFiltered
}
