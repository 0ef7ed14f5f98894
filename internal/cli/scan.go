package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"portreach/internal/config"
	"portreach/internal/errors"
	"portreach/internal/logging"
	"portreach/internal/output"
	"portreach/internal/portspec"
	"portreach/internal/scan"
	"portreach/internal/target"
)

const interruptExitCode = 130

var (
	scanTargets      []string
	scanPorts        string
	scanTimeout      float64
	scanConcurrency  int
	scanBanner       bool
	scanOutput       string
	scanFormat       string
	scanSummaryTable bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Probe TCP ports on one or more targets",
	Long: `Scan targets for TCP ports that accept a connection within the
timeout. Targets may be IP addresses, CIDR ranges, or hostnames; hosts are
scanned one at a time with bounded per-host concurrency.`,
	Example: `  portreach scan -t 192.168.1.10 -p 22,80,443
  portreach scan -t 10.0.0.0/28 -p 1-1024 --banner
  portreach scan -t scanme.example.org -p 80,8000-8100 --timeout 0.5 -o results.json
  portreach scan -t 192.168.1.1 -t 192.168.1.2 -p 22 --summary-table`,
	Run: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	bindScanFlags(scanCmd.Flags())
}

// bindScanFlags registers the scan command's flags on the given flag set.
func bindScanFlags(flags *pflag.FlagSet) {
	flags.StringSliceVarP(&scanTargets, "targets", "t", nil,
		"Targets to scan (IP, CIDR range, or hostname; repeatable)")
	flags.StringVarP(&scanPorts, "ports", "p", config.DefaultPorts,
		"Port specification (e.g. '22,80,443' or '1-1024')")
	flags.Float64Var(&scanTimeout, "timeout", config.DefaultTimeoutSeconds,
		"Per-connection timeout in seconds")
	flags.IntVarP(&scanConcurrency, "concurrency", "c", config.DefaultConcurrency,
		"Maximum simultaneous connections per host")
	flags.BoolVar(&scanBanner, "banner", false,
		"Read a short banner from ports that accept the connection")
	flags.StringVarP(&scanOutput, "output", "o", "",
		"Output file path (.json or .csv)")
	flags.StringVar(&scanFormat, "format", "",
		"Output format override: json or csv (default: from file extension)")
	flags.BoolVar(&scanSummaryTable, "summary-table", false,
		"Print a per-host summary table after the scan")
}

func runScan(cmd *cobra.Command, _ []string) {
	if len(scanTargets) == 0 {
		fmt.Fprintf(os.Stderr, "Error: at least one --targets value is required\n\n")
		_ = cmd.Help()
		os.Exit(1)
	}

	cfg := buildScanConfig(cmd.Flags())
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}

	ports, err := portspec.Parse(cfg.Scan.Ports)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}

	var hosts []string
	for _, t := range scanTargets {
		hosts = append(hosts, target.Expand(t)...)
	}
	if len(hosts) == 0 {
		fmt.Fprintf(os.Stderr, "Error: target list expanded to zero hosts\n")
		os.Exit(1)
	}

	if scanOutput != "" {
		if err := validateOutputPath(scanOutput, scanFormat); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := output.NewConsoleReporter(os.Stdout)
	session := scan.NewSession(scan.Config{
		Timeout:     cfg.Timeout(),
		Concurrency: cfg.Scan.Concurrency,
		Banner:      cfg.Scan.Banner,
	}, reporter)

	result, err := session.Run(ctx, hosts, ports)
	if err != nil {
		// The scan was interrupted; save what we have and leave.
		fmt.Println("Scan interrupted by user.")
		saveResults(result)
		os.Exit(interruptExitCode)
	}

	saveResults(result)

	if scanSummaryTable {
		output.RenderSummaryTable(os.Stdout, result)
	}
}

// buildScanConfig merges config-file/env settings with command-line flags.
// Flags that were set explicitly win over the config file. The flag set is
// passed in rather than read off scanCmd so this never references the
// command whose Run field references it.
func buildScanConfig(flags *pflag.FlagSet) *config.Config {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		logging.Warn("Failed to load config file, using defaults", "error", err)
		cfg = config.Default()
	}

	if v := viper.GetFloat64("scan.timeout"); v > 0 {
		cfg.Scan.TimeoutSeconds = v
	}
	if v := viper.GetInt("scan.concurrency"); v > 0 {
		cfg.Scan.Concurrency = v
	}
	if viper.GetBool("scan.banner") {
		cfg.Scan.Banner = true
	}
	if v := viper.GetString("scan.ports"); v != "" {
		cfg.Scan.Ports = v
	}

	if flags.Changed("timeout") {
		cfg.Scan.TimeoutSeconds = scanTimeout
	}
	if flags.Changed("concurrency") {
		cfg.Scan.Concurrency = scanConcurrency
	}
	if flags.Changed("banner") {
		cfg.Scan.Banner = scanBanner
	}
	if flags.Changed("ports") {
		cfg.Scan.Ports = scanPorts
	}
	return cfg
}

// validateOutputPath rejects output destinations before the scan starts, so
// a long run never ends with an unwritable result.
func validateOutputPath(path, format string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if format != "" {
		if format != "json" && format != "csv" {
			return errors.NewConfigError(errors.CodeConfiguration,
				fmt.Sprintf("unsupported format %q (want json or csv)", format))
		}
		return nil
	}
	if ext != ".json" && ext != ".csv" {
		return errors.NewConfigError(errors.CodeConfiguration,
			fmt.Sprintf("output file must end with .json or .csv, got %q", path))
	}
	return nil
}

// saveResults writes the session results to the requested file, if any.
// Partial results from an interrupted scan are saved the same way.
func saveResults(result *scan.SessionResult) {
	if scanOutput == "" || result == nil || result.Len() == 0 {
		return
	}

	start := time.Now()
	var err error
	switch scanFormat {
	case "json":
		err = output.SaveJSON(scanOutput, result)
	case "csv":
		err = output.SaveCSV(scanOutput, result)
	default:
		err = output.Save(scanOutput, result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("Saved results to %s\n", scanOutput)
	logging.Debug("Results written", "path", scanOutput, "duration", time.Since(start))
}
