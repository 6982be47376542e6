package config

import (
	"testing"

	"tradelog-analyzer/internal/reporter"
)

func defaultOptions() AnalyzeOptions {
	return AnalyzeOptions{
		StartHour:     8,
		EndHour:       18,
		BucketMinutes: 1,
		Delimiter:     ";",
		SkipRows:      5,
		Encoding:      "latin-1",
		Format:        "console",
		CSVDelimiter:  ",",
	}
}

func TestCreatePipelineConfig(t *testing.T) {
	cfg, err := CreatePipelineConfig(defaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Window.StartHour != 8 || cfg.Window.EndHour != 18 {
		t.Errorf("unexpected window %+v", cfg.Window)
	}
	if cfg.BucketMinutes != 1 {
		t.Errorf("bucket minutes = %d, want 1", cfg.BucketMinutes)
	}
	if cfg.Resolver == nil {
		t.Error("expected a default resolver config")
	}
}

func TestCreatePipelineConfigInvalidWindow(t *testing.T) {
	opts := defaultOptions()
	opts.StartHour = 20
	opts.EndHour = 8

	if _, err := CreatePipelineConfig(opts); err == nil {
		t.Error("expected error for inverted window")
	}
}

func TestCreateDelimitedOptions(t *testing.T) {
	opts, err := CreateDelimitedOptions(defaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.Delimiter != ';' {
		t.Errorf("delimiter = %q, want ';'", opts.Delimiter)
	}
	if opts.SkipRows != 5 {
		t.Errorf("skip rows = %d, want 5", opts.SkipRows)
	}
	if opts.Encoding != "latin-1" {
		t.Errorf("encoding = %q, want latin-1", opts.Encoding)
	}
}

func TestCreateDelimitedOptionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AnalyzeOptions)
	}{
		{"Multi-character delimiter", func(o *AnalyzeOptions) { o.Delimiter = ";;" }},
		{"Empty delimiter", func(o *AnalyzeOptions) { o.Delimiter = "" }},
		{"Unknown encoding", func(o *AnalyzeOptions) { o.Encoding = "utf-16" }},
		{"Negative skip rows", func(o *AnalyzeOptions) { o.SkipRows = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			tt.mutate(&opts)
			if _, err := CreateDelimitedOptions(opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCreateReportConfig(t *testing.T) {
	opts := defaultOptions()
	opts.Format = "json"

	cfg, err := CreateReportConfig(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != reporter.FormatJSON {
		t.Errorf("format = %q, want json", cfg.Format)
	}
	if cfg.CSVDelimiter != ',' {
		t.Errorf("csv delimiter = %q, want ','", cfg.CSVDelimiter)
	}

	opts.CSVDelimiter = "--"
	if _, err := CreateReportConfig(opts); err == nil {
		t.Error("expected error for multi-character csv delimiter")
	}
}

func TestCreateServerConfig(t *testing.T) {
	cfg, err := CreateServerConfig(":9000", 1<<20, defaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q, want :9000", cfg.Addr)
	}
	if cfg.MaxUploadBytes != 1<<20 {
		t.Errorf("max upload = %d, want %d", cfg.MaxUploadBytes, 1<<20)
	}
	if cfg.Pipeline == nil || cfg.Delimited == nil {
		t.Error("expected pipeline and delimited configs to be set")
	}

	// Zero keeps the default ceiling.
	cfg, err = CreateServerConfig(":9000", 0, defaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxUploadBytes != 20<<20 {
		t.Errorf("max upload = %d, want default %d", cfg.MaxUploadBytes, 20<<20)
	}
}
