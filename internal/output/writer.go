// Package output renders scan results for files and the console.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"portreach/internal/errors"
	"portreach/internal/scan"
)

// Save writes the results to path, choosing the format from the file
// extension. Supported extensions are .json and .csv.
func Save(path string, result *scan.SessionResult) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(path, result)
	case ".csv":
		return SaveCSV(path, result)
	default:
		return errors.NewConfigError(errors.CodeConfiguration,
			fmt.Sprintf("unsupported output extension %q (want .json or .csv)", filepath.Ext(path)))
	}
}

// SaveJSON writes the results as an indented JSON object keyed by host,
// hosts in scan order.
func SaveJSON(path string, result *scan.SessionResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.WrapScanError(errors.CodeFileWrite, "failed to encode results", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// SaveCSV writes the results as flat rows, one row per probed port.
func SaveCSV(path string, result *scan.SessionResult) error {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write([]string{"host", "port", "open", "banner"}); err != nil {
		return errors.WrapScanError(errors.CodeFileWrite, "failed to encode results", err)
	}
	for _, host := range result.Hosts() {
		hostResult, _ := result.Get(host)
		for _, out := range hostResult {
			row := []string{
				host,
				strconv.Itoa(out.Port),
				strconv.FormatBool(out.Open),
				out.Banner,
			}
			if err := w.Write(row); err != nil {
				return errors.WrapScanError(errors.CodeFileWrite, "failed to encode results", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapScanError(errors.CodeFileWrite, "failed to encode results", err)
	}
	return writeAtomic(path, []byte(sb.String()))
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it into place, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.WrapScanError(errors.CodeFileWrite, "failed to create output file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.WrapScanError(errors.CodeFileWrite, "failed to write output file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapScanError(errors.CodeFileWrite, "failed to write output file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapScanError(errors.CodeFileWrite, "failed to write output file", err)
	}
	return nil
}
