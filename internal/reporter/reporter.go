// Package reporter renders a pipeline result as a summary report.
//
// Three output formats are supported: console text for terminal use, JSON
// for the HTTP surface and programmatic consumers, and CSV for spreadsheet
// import. Output ordering is deterministic so identical results render
// byte-identical reports.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tradelog-analyzer/internal/pipeline"
	"tradelog-analyzer/pkg/errors"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation.
type ReportConfig struct {
	Format       OutputFormat `json:"format"`
	CSVDelimiter rune         `json:"csv_delimiter"`
	// IncludeNotes controls whether schema-drift and skipped-frame notes
	// are rendered as warnings.
	IncludeNotes bool `json:"include_notes"`
}

// DefaultReportConfig returns a default report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:       FormatConsole,
		CSVDelimiter: ',',
		IncludeNotes: true,
	}
}

// RobotSummary is one robot's line in the report.
type RobotSummary struct {
	Name         string `json:"name"`
	Operations   int    `json:"operations"`
	Total        string `json:"total"`
	BestInterval string `json:"best_interval,omitempty"`
}

// Report is the flattened, render-ready view of a pipeline result.
type Report struct {
	Period           string         `json:"period"`
	Operations       int            `json:"operations"`
	InWindow         int            `json:"in_window"`
	Dropped          int            `json:"dropped"`
	WithSpecificTime int            `json:"with_specific_time"`
	DateOnly         int            `json:"date_only"`
	Total            string         `json:"total"`
	WindowTotal      string         `json:"window_total"`
	Robots           []RobotSummary `json:"robots"`
	BestMinute       string         `json:"best_minute,omitempty"`
	WorstMinute      string         `json:"worst_minute,omitempty"`
	BestInterval     string         `json:"best_interval,omitempty"`
	BestIntervalGain string         `json:"best_interval_gain,omitempty"`
	Notes            []string       `json:"notes,omitempty"`
}

// BuildReport flattens a pipeline result into a Report. Robots appear in the
// dataset's sorted order.
func BuildReport(res *pipeline.Result) *Report {
	m := res.Metrics

	// Time-of-day presence is reported over the full dataset: date-only
	// records normalize to midnight and never survive the window filter, so
	// the windowed metrics cannot see them.
	withTime := res.Dataset.CountWithSpecificTime()

	report := &Report{
		Period:           res.Dataset.Range.String(),
		Operations:       res.Dataset.Len(),
		InWindow:         res.Windowed.Len(),
		Dropped:          res.Dataset.Dropped,
		WithSpecificTime: withTime,
		DateOnly:         res.Dataset.Len() - withTime,
		Total:            res.Dataset.TotalResult().StringFixed(2),
		WindowTotal:      m.Total.StringFixed(2),
		Notes:            res.Dataset.Notes,
	}

	for _, robot := range res.Windowed.Robots {
		summary := RobotSummary{
			Name:  robot,
			Total: m.RobotTotals[robot].StringFixed(2),
		}
		summary.Operations = len(m.Cumulative[robot])
		if iv, ok := m.RobotIntervals[robot]; ok {
			summary.BestInterval = iv.String()
		}
		report.Robots = append(report.Robots, summary)
	}

	if m.Best != nil {
		report.BestMinute = fmt.Sprintf("%s (%s)", m.Best.Clock(), m.Best.Total.StringFixed(2))
	}
	if m.Worst != nil {
		report.WorstMinute = fmt.Sprintf("%s (%s)", m.Worst.Clock(), m.Worst.Total.StringFixed(2))
	}
	if m.BestInterval != nil {
		report.BestInterval = m.BestInterval.String()
		report.BestIntervalGain = m.BestInterval.Gain.StringFixed(2)
	}

	return report
}

// Reporter renders pipeline results in the configured format.
type Reporter struct {
	config *ReportConfig
}

// NewReporter creates a reporter with the given configuration.
func NewReporter(config *ReportConfig) (*Reporter, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if !config.Format.IsValid() {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "report format", nil).
			WithContext("format", string(config.Format))
	}
	return &Reporter{config: config}, nil
}

// Write renders the result to w.
func (r *Reporter) Write(w io.Writer, res *pipeline.Result) error {
	report := BuildReport(res)

	switch r.config.Format {
	case FormatJSON:
		return r.writeJSON(w, report)
	case FormatCSV:
		return r.writeCSV(w, report)
	default:
		return r.writeConsole(w, report)
	}
}

func (r *Reporter) writeJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (r *Reporter) writeCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = r.config.CSVDelimiter

	if err := cw.Write([]string{"robot", "operations", "total", "best_interval"}); err != nil {
		return err
	}
	for _, robot := range report.Robots {
		row := []string{robot.Name, strconv.Itoa(robot.Operations), robot.Total, robot.BestInterval}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"TOTAL", strconv.Itoa(report.InWindow), report.WindowTotal, report.BestInterval}); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func (r *Reporter) writeConsole(w io.Writer, report *Report) error {
	var b strings.Builder

	b.WriteString("TRADING OPERATIONS SUMMARY\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Period:               %s\n", report.Period)
	fmt.Fprintf(&b, "Operations:           %d (%d in window, %d dropped)\n",
		report.Operations, report.InWindow, report.Dropped)
	fmt.Fprintf(&b, "With specific time:   %d (%d date-only)\n",
		report.WithSpecificTime, report.DateOnly)
	fmt.Fprintf(&b, "Total result:         %s\n", report.Total)
	fmt.Fprintf(&b, "In-window result:     %s\n", report.WindowTotal)

	if len(report.Robots) > 0 {
		b.WriteString("\nPER-ROBOT RESULTS\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, robot := range report.Robots {
			line := fmt.Sprintf("  %-28s %6d ops  %12s", robot.Name, robot.Operations, robot.Total)
			if robot.BestInterval != "" {
				line += "  best " + robot.BestInterval
			}
			b.WriteString(line + "\n")
		}
	}

	if report.BestInterval != "" {
		b.WriteString("\nBEST INTERVAL\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		fmt.Fprintf(&b, "  %s  gain %s\n", report.BestInterval, report.BestIntervalGain)
	}
	if report.BestMinute != "" {
		fmt.Fprintf(&b, "  best minute  %s\n", report.BestMinute)
	}
	if report.WorstMinute != "" {
		fmt.Fprintf(&b, "  worst minute %s\n", report.WorstMinute)
	}

	if report.InWindow == 0 {
		b.WriteString("\nNo operations inside the configured trading window.\n")
	}

	if r.config.IncludeNotes && len(report.Notes) > 0 {
		b.WriteString("\nWARNINGS\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, note := range report.Notes {
			b.WriteString("  - " + note + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
