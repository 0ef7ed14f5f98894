package scan

import (
	"bytes"
	"encoding/json"
	"time"

	"portreach/internal/probe"
)

// Config carries the engine parameters for one scan session.
type Config struct {
	// Timeout bounds each connection attempt.
	Timeout time.Duration

	// Concurrency caps simultaneous probes against the active host. The
	// cap is per host: hosts are scanned strictly one at a time, so it is
	// never shared across hosts.
	Concurrency int

	// Banner enables a bounded read of whatever an open port volunteers.
	Banner bool
}

// HostResult is the full outcome set for one host: one entry per requested
// port, sorted ascending by port.
type HostResult []probe.Outcome

// OpenCount returns the number of open ports in the result.
func (r HostResult) OpenCount() int {
	n := 0
	for _, out := range r {
		if out.Open {
			n++
		}
	}
	return n
}

// OpenPorts returns the open port numbers in ascending order.
func (r HostResult) OpenPorts() []int {
	var ports []int
	for _, out := range r {
		if out.Open {
			ports = append(ports, out.Port)
		}
	}
	return ports
}

// SessionResult maps each scanned host to its result set, preserving scan
// order. It is the engine's terminal artifact, handed off to reporters and
// serializers.
type SessionResult struct {
	hosts   []string
	results map[string]HostResult
}

// NewSessionResult creates an empty session result.
func NewSessionResult() *SessionResult {
	return &SessionResult{results: make(map[string]HostResult)}
}

// Add records the result for a host. First write wins the position; adding
// the same host twice replaces the result without reordering.
func (s *SessionResult) Add(host string, result HostResult) {
	if _, exists := s.results[host]; !exists {
		s.hosts = append(s.hosts, host)
	}
	s.results[host] = result
}

// Hosts returns the scanned hosts in scan order.
func (s *SessionResult) Hosts() []string {
	return s.hosts
}

// Get returns the result for a host.
func (s *SessionResult) Get(host string) (HostResult, bool) {
	r, ok := s.results[host]
	return r, ok
}

// Len returns the number of hosts with recorded results.
func (s *SessionResult) Len() int {
	return len(s.hosts)
}

// MarshalJSON serializes the result as an object keyed by host, with keys in
// scan order rather than the sorted order encoding/json gives maps.
func (s *SessionResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, host := range s.hosts {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(host)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.results[host])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Reporter receives progressive scan events. Implementations must tolerate
// being called from the collecting goroutine; the engine never calls a
// Reporter concurrently with itself.
type Reporter interface {
	// ScanStarted fires before the first probe of a host is dispatched.
	ScanStarted(host string, portCount int)

	// PortOpen fires for each open port at the moment it is discovered,
	// in completion order.
	PortOpen(host string, outcome probe.Outcome)

	// HostDone fires once a host's result set is complete and sorted.
	HostDone(host string, result HostResult)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) ScanStarted(string, int)        {}
func (NopReporter) PortOpen(string, probe.Outcome) {}
func (NopReporter) HostDone(string, HostResult)    {}
