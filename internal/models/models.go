// Package models defines the data contract of the ingestion pipeline: raw
// tabular frames as handed in by the file readers, the normalized operation
// record, and the consolidated dataset consumed by analytics and reporting.
//
// All values are created fresh per request and discarded with it; nothing in
// this package holds cross-request state.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawFrame is one uploaded sheet or delimited file as an untyped 2-D table.
// It is transient: produced by ingest, consumed by column resolution and
// normalization, never kept afterwards.
type RawFrame struct {
	// Source identifies the strategy ("robot") this frame belongs to:
	// the sheet name for workbooks, the sanitized file base name for
	// delimited exports. Never empty; duplicates are allowed and treated
	// as partial data for the same robot.
	Source  string
	Headers []string
	Rows    [][]string
}

// Empty reports whether the frame carries no data rows.
func (f *RawFrame) Empty() bool {
	return len(f.Rows) == 0
}

// Cell returns the cell at the given column index of a row, or "" when the
// row is shorter than the header (truncated exports read as empty cells).
func (f *RawFrame) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Operation is one normalized trading operation. Both Robot and OpenTime are
// always well-formed: rows that fail normalization are dropped before this
// type is constructed, never represented with zero fields.
type Operation struct {
	Robot     string          `json:"robot"`
	OpenTime  time.Time       `json:"open_time"`
	CloseTime time.Time       `json:"close_time,omitempty"`
	Result    decimal.Decimal `json:"result"`
}

// Validate performs basic validation on the Operation.
func (o *Operation) Validate() error {
	if strings.TrimSpace(o.Robot) == "" {
		return fmt.Errorf("operation robot cannot be empty")
	}
	if o.OpenTime.IsZero() {
		return fmt.Errorf("operation open time cannot be zero")
	}
	return nil
}

// MinuteOfDay returns the open time's minute of day (0..1439).
func (o *Operation) MinuteOfDay() int {
	return o.OpenTime.Hour()*60 + o.OpenTime.Minute()
}

// HasSpecificTime reports whether the open time carries a time of day.
// Date-only cells normalize to midnight, which the original exports use to
// mean "no time recorded".
func (o *Operation) HasSpecificTime() bool {
	return !(o.OpenTime.Hour() == 0 && o.OpenTime.Minute() == 0 && o.OpenTime.Second() == 0)
}

// String returns a string representation of the Operation.
func (o *Operation) String() string {
	return fmt.Sprintf("Operation{Robot: %s, Open: %s, Result: %s}",
		o.Robot, o.OpenTime.Format("2006-01-02 15:04"), o.Result.String())
}

// MarshalJSON renders decimal and time fields in their canonical string
// forms so reports are byte-stable.
func (o Operation) MarshalJSON() ([]byte, error) {
	type alias struct {
		Robot     string `json:"robot"`
		OpenTime  string `json:"open_time"`
		CloseTime string `json:"close_time,omitempty"`
		Result    string `json:"result"`
	}
	a := alias{
		Robot:    o.Robot,
		OpenTime: o.OpenTime.Format("2006-01-02T15:04:05"),
		Result:   o.Result.String(),
	}
	if !o.CloseTime.IsZero() {
		a.CloseTime = o.CloseTime.Format("2006-01-02T15:04:05")
	}
	return json.Marshal(a)
}

// DateRange is the [From, To] span of a dataset's open times.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IsZero reports whether the range is unset (empty dataset).
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// String formats the range the way the original reports render periods.
func (r DateRange) String() string {
	if r.IsZero() {
		return "no data"
	}
	return fmt.Sprintf("%s to %s", r.From.Format("02/01/2006"), r.To.Format("02/01/2006"))
}

// Dataset is the consolidated, time-ordered set of operations across all
// sources of one request.
//
// Invariants: Operations is stable-sorted ascending by OpenTime; Robots is
// the sorted set of distinct Operation.Robot values; Range spans the open
// times, zero when the dataset is empty.
type Dataset struct {
	Operations []Operation `json:"operations"`
	Robots     []string    `json:"robots"`
	Dropped    int         `json:"dropped"`
	Notes      []string    `json:"notes,omitempty"`
	Range      DateRange   `json:"range"`
}

// Empty reports whether the dataset holds no operations.
func (d *Dataset) Empty() bool {
	return len(d.Operations) == 0
}

// Len returns the number of operations.
func (d *Dataset) Len() int {
	return len(d.Operations)
}

// TotalResult sums the result of every operation.
func (d *Dataset) TotalResult() decimal.Decimal {
	total := decimal.Zero
	for i := range d.Operations {
		total = total.Add(d.Operations[i].Result)
	}
	return total
}

// CountWithSpecificTime returns the number of operations whose open time
// carries a time of day.
func (d *Dataset) CountWithSpecificTime() int {
	n := 0
	for i := range d.Operations {
		if d.Operations[i].HasSpecificTime() {
			n++
		}
	}
	return n
}

// SanitizeSource turns a file or sheet name into a usable source id:
// extension stripped, path separators and whitespace collapsed. Returns
// fallback when nothing usable remains.
func SanitizeSource(name, fallback string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	out = strings.ReplaceAll(out, " ", "_")
	if out == "" {
		return fallback
	}
	return out
}
