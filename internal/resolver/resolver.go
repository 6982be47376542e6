// Package resolver maps the arbitrary column headers of an uploaded frame
// onto the semantic roles the pipeline needs: the result (P&L) column and the
// timestamp column(s).
//
// Matching is driven entirely by ordered synonym tables so new export
// formats are handled by extending configuration, not logic. Headers are
// compared case-insensitively, accent-insensitively and whitespace-trimmed;
// the first synonym in priority order that matches a header wins. Resolution
// is a pure function of the header row and must be re-run per frame, because
// different robots export with different layouts.
package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tradelog-analyzer/pkg/errors"
)

// Config holds the synonym tables, in priority order. Earlier entries win.
type Config struct {
	ResultSynonyms   []string `json:"result_synonyms"`
	DateTimeSynonyms []string `json:"datetime_synonyms"`
	DateSynonyms     []string `json:"date_synonyms"`
	TimeSynonyms     []string `json:"time_synonyms"`
	CloseSynonyms    []string `json:"close_synonyms"`
	RobotSynonyms    []string `json:"robot_synonyms"`
}

// DefaultConfig returns the synonym tables covering the export formats seen
// in the field: Portuguese broker exports first, generic English fallbacks
// after.
func DefaultConfig() *Config {
	return &Config{
		ResultSynonyms: []string{
			"res. operação (%)",
			"res. operação",
			"resultado",
			"lucro",
			"profit",
			"result",
			"saldo",
		},
		DateTimeSynonyms: []string{
			"datahora",
			"timestamp",
		},
		DateSynonyms: []string{
			"abertura",
			"data abertura",
			"open time",
			"data",
			"date",
		},
		TimeSynonyms: []string{
			"hora",
			"time",
		},
		CloseSynonyms: []string{
			"fechamento",
			"data fechamento",
			"close time",
		},
		RobotSynonyms: []string{
			"robo",
			"robô",
			"robot",
			"strategy",
		},
	}
}

// Validate checks that the required synonym tables are non-empty.
func (c *Config) Validate() error {
	if len(c.ResultSynonyms) == 0 {
		return errors.ConfigError(errors.CodeMissingConfig, "result_synonyms", nil)
	}
	if len(c.DateTimeSynonyms) == 0 && len(c.DateSynonyms) == 0 {
		return errors.ConfigError(errors.CodeMissingConfig, "datetime_synonyms/date_synonyms", nil)
	}
	return nil
}

// Mapping is the resolved column layout of one frame. Index -1 means the
// role has no column in this frame.
type Mapping struct {
	Result   int
	DateTime int
	Date     int
	Time     int
	Close    int
	Robot    int

	// ResultHeader is the original header text that matched the result
	// role, kept for schema-drift notes across frames.
	ResultHeader string
}

// HasCombined reports whether the frame carries a single combined
// date-and-time column.
func (m *Mapping) HasCombined() bool {
	return m.DateTime >= 0
}

// Resolve maps a frame's header row onto the pipeline roles, or fails with a
// missing-column error naming the first unresolvable role. The source name is
// used only for error context.
func Resolve(source string, headers []string, cfg *Config) (*Mapping, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	claimed := make([]bool, len(headers))
	m := &Mapping{Result: -1, DateTime: -1, Date: -1, Time: -1, Close: -1, Robot: -1}

	// Result is matched first: exactly one result column is expected per
	// frame, so a header ambiguous between roles counts as the result.
	m.Result = match(normalized, claimed, cfg.ResultSynonyms)
	if m.Result < 0 {
		return nil, errors.MissingColumnError(source, "result", headers)
	}
	m.ResultHeader = strings.TrimSpace(headers[m.Result])

	// First combined datetime column wins; otherwise a date column plus an
	// optional separate time column.
	m.DateTime = match(normalized, claimed, cfg.DateTimeSynonyms)
	if m.DateTime < 0 {
		m.Date = match(normalized, claimed, cfg.DateSynonyms)
		if m.Date < 0 {
			return nil, errors.MissingColumnError(source, "timestamp", headers)
		}
		m.Time = match(normalized, claimed, cfg.TimeSynonyms)
	}

	m.Close = match(normalized, claimed, cfg.CloseSynonyms)
	m.Robot = match(normalized, claimed, cfg.RobotSynonyms)

	return m, nil
}

// match returns the index of the first header matching any synonym, walking
// synonyms in priority order. Matched columns are claimed so later roles
// cannot reuse them.
func match(normalized []string, claimed []bool, synonyms []string) int {
	for _, syn := range synonyms {
		want := NormalizeHeader(syn)
		for i, h := range normalized {
			if claimed[i] || h == "" {
				continue
			}
			if h == want {
				claimed[i] = true
				return i
			}
		}
	}
	return -1
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader lowercases, trims and accent-folds a header name so that
// "Res. Operação" and "res. operacao" compare equal.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if folded, _, err := transform.String(accentStripper, h); err == nil {
		h = folded
	}
	// Collapse internal runs of whitespace; exports disagree on spacing.
	return strings.Join(strings.Fields(h), " ")
}
