// Package config builds component configurations from CLI flag values.
package config

import (
	"tradelog-analyzer/internal/consolidate"
	"tradelog-analyzer/internal/ingest"
	"tradelog-analyzer/internal/pipeline"
	"tradelog-analyzer/internal/reporter"
	"tradelog-analyzer/internal/server"
	"tradelog-analyzer/pkg/errors"
)

// AnalyzeOptions carries the flag values of the analyze command.
type AnalyzeOptions struct {
	StartHour     int
	EndHour       int
	BucketMinutes int

	Delimiter string
	SkipRows  int
	Encoding  string

	Format       string
	CSVDelimiter string
}

// CreatePipelineConfig builds the pipeline configuration from flag values.
func CreatePipelineConfig(opts AnalyzeOptions) (*pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	cfg.Window = consolidate.Window{StartHour: opts.StartHour, EndHour: opts.EndHour}
	cfg.BucketMinutes = opts.BucketMinutes

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateDelimitedOptions builds the delimited ingestion options from flag values.
func CreateDelimitedOptions(opts AnalyzeOptions) (*ingest.DelimitedOptions, error) {
	delimited := ingest.DefaultDelimitedOptions()
	delimited.SkipRows = opts.SkipRows
	delimited.Encoding = opts.Encoding

	if len(opts.Delimiter) != 1 {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "delimiter", nil).
			WithContext("delimiter", opts.Delimiter).
			WithSuggestion("use a single character, e.g. ';' or ','")
	}
	delimited.Delimiter = rune(opts.Delimiter[0])

	if err := delimited.Validate(); err != nil {
		return nil, err
	}
	return delimited, nil
}

// CreateReportConfig builds the report configuration from flag values.
func CreateReportConfig(opts AnalyzeOptions) (*reporter.ReportConfig, error) {
	cfg := reporter.DefaultReportConfig()
	cfg.Format = reporter.OutputFormat(opts.Format)

	if len(opts.CSVDelimiter) != 1 {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "csv-delimiter", nil).
			WithContext("csv_delimiter", opts.CSVDelimiter).
			WithSuggestion("use a single character, e.g. ',' or ';'")
	}
	cfg.CSVDelimiter = rune(opts.CSVDelimiter[0])

	return cfg, nil
}

// CreateServerConfig builds the HTTP server configuration.
func CreateServerConfig(addr string, maxUploadBytes int64, opts AnalyzeOptions) (*server.Config, error) {
	pipelineCfg, err := CreatePipelineConfig(opts)
	if err != nil {
		return nil, err
	}
	delimited, err := CreateDelimitedOptions(opts)
	if err != nil {
		return nil, err
	}

	cfg := server.DefaultConfig()
	cfg.Addr = addr
	if maxUploadBytes > 0 {
		cfg.MaxUploadBytes = maxUploadBytes
	}
	cfg.Pipeline = pipelineCfg
	cfg.Delimited = delimited
	return cfg, nil
}
