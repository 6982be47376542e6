// Package ingest reads uploaded trading logs into raw frames.
//
// Two upload shapes are supported: one xlsx workbook whose sheets each hold a
// robot's operations (or all robots in one sheet with a robot column), and a
// set of delimited text exports, one file per robot. Everything downstream of
// this package works on models.RawFrame and never touches files.
package ingest

import (
	"unicode/utf8"

	"tradelog-analyzer/pkg/errors"
)

// Encoding names accepted for delimited exports.
const (
	EncodingLatin1 = "latin-1"
	EncodingUTF8   = "utf-8"
)

// DelimitedOptions configures reading of delimited robot exports. The
// defaults match the broker export format the pipeline was built for:
// semicolon-separated, latin-1, five junk lines before the header row.
type DelimitedOptions struct {
	Delimiter rune   `json:"delimiter"`
	SkipRows  int    `json:"skip_rows"`
	Encoding  string `json:"encoding"`
}

// DefaultDelimitedOptions returns options for the standard broker export.
func DefaultDelimitedOptions() *DelimitedOptions {
	return &DelimitedOptions{
		Delimiter: ';',
		SkipRows:  5,
		Encoding:  EncodingLatin1,
	}
}

// Validate checks the delimited reader options.
func (o *DelimitedOptions) Validate() error {
	if o.Delimiter == 0 || !utf8.ValidRune(o.Delimiter) {
		return errors.ConfigError(errors.CodeInvalidConfig, "delimiter", nil)
	}
	if o.SkipRows < 0 {
		return errors.ConfigError(errors.CodeInvalidConfig, "skip_rows", nil).
			WithContext("skip_rows", o.SkipRows)
	}
	switch o.Encoding {
	case EncodingLatin1, EncodingUTF8:
	default:
		return errors.ConfigError(errors.CodeInvalidConfig, "encoding", nil).
			WithContext("encoding", o.Encoding)
	}
	return nil
}
