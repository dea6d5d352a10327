/* SPDX-License-Identifier: MPL-2.0 */

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Header is the fixed column order of the recording report.
var Header = []string{
	"Site URL",
	"Recording Name",
	"Host Display Name",
	"Date Created",
	"Last Accessed",
	"Duration",
	"Size (MB)",
	"Format",
	"Service Type",
}

// Write writes the report rows as CSV under dir, naming the file after
// the given local timestamp: recording_report_<MM-DD-YYYY_HH-MM-SS>.csv.
// A header-only file for an empty row set is a legitimate result.
// Returns the path of the written file.
func Write(dir string, now time.Time, rows []Row) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("recording_report_%s.csv", now.Format("01-02-2006_15-04-05"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.record()); err != nil {
			return "", fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}

	return path, nil
}

// record renders the row in Header order.
func (r Row) record() []string {
	return []string{
		r.SiteURL,
		r.Topic,
		r.HostDisplayName,
		formatTimestamp(r.CreateTime),
		formatTimestamp(r.LastAccessed),
		formatDuration(r.DurationSeconds),
		formatSizeMB(r.SizeBytes),
		r.Format,
		r.ServiceType,
	}
}

// formatTimestamp renders an RFC 3339 timestamp as MM/DD/YY. Values
// that are not timestamps ("Never", "Unknown") pass through unchanged.
func formatTimestamp(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("01/02/06")
}

// formatDuration converts a duration in seconds to HH:MM:SS.
func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatSizeMB converts a byte count to megabytes with two decimals.
func formatSizeMB(bytes int64) string {
	return fmt.Sprintf("%.2f", float64(bytes)/(1024*1024))
}
