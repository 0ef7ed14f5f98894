package output

import (
	"fmt"
	"io"

	"portreach/internal/probe"
	"portreach/internal/scan"
)

// ConsoleReporter prints progressive scan events as human-readable lines.
// Open ports are reported as soon as they are observed, so ordering within
// a host follows completion order, not port order.
type ConsoleReporter struct {
	w io.Writer
}

// NewConsoleReporter returns a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// ScanStarted announces a new host.
func (c *ConsoleReporter) ScanStarted(host string, portCount int) {
	fmt.Fprintf(c.w, "Scanning %s ... (ports: %d)\n", host, portCount)
}

// PortOpen prints one open-port line, with the banner when one was read.
func (c *ConsoleReporter) PortOpen(host string, out probe.Outcome) {
	if out.Banner != "" {
		fmt.Fprintf(c.w, "[%s] OPEN  - %d  | %s\n", host, out.Port, out.Banner)
	} else {
		fmt.Fprintf(c.w, "[%s] OPEN  - %d\n", host, out.Port)
	}
}

// HostDone prints the per-host summary line.
func (c *ConsoleReporter) HostDone(host string, result scan.HostResult) {
	fmt.Fprintf(c.w, "Finished %s: %d open / %d checked\n\n",
		host, result.OpenCount(), len(result))
}
