package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"portreach/internal/scan"
)

// RenderSummaryTable writes a per-host summary table of the whole session.
func RenderSummaryTable(w io.Writer, result *scan.SessionResult) {
	table := tablewriter.NewWriter(w)
	table.Header("Host", "Open", "Checked", "Open Ports")

	for _, host := range result.Hosts() {
		hostResult, _ := result.Get(host)

		openPorts := hostResult.OpenPorts()
		ports := make([]string, len(openPorts))
		for i, p := range openPorts {
			ports[i] = strconv.Itoa(p)
		}
		portList := strings.Join(ports, ", ")
		if portList == "" {
			portList = "-"
		}

		_ = table.Append([]string{
			host,
			strconv.Itoa(hostResult.OpenCount()),
			strconv.Itoa(len(hostResult)),
			portList,
		})
	}

	_ = table.Render()
}
