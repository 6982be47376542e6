// Package pipeline wires the ingestion stages together: column resolution
// and normalization per frame, consolidation across sources, the
// operating-hours filter, and aggregate computation.
//
// A run is synchronous and owns no shared state; callers wanting parallelism
// run independent pipelines. There is no cancellation: a run either
// completes or fails, and the only fatal failure is an empty dataset.
package pipeline

import (
	"fmt"
	"strings"

	"tradelog-analyzer/internal/analytics"
	"tradelog-analyzer/internal/consolidate"
	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/internal/normalize"
	"tradelog-analyzer/internal/resolver"
	"tradelog-analyzer/pkg/errors"
	"tradelog-analyzer/pkg/logger"
)

// Config collects the stage configurations of one run.
type Config struct {
	Resolver      *resolver.Config   `json:"resolver"`
	Window        consolidate.Window `json:"window"`
	BucketMinutes int                `json:"bucket_minutes"`
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		Resolver:      resolver.DefaultConfig(),
		Window:        consolidate.DefaultWindow(),
		BucketMinutes: 1,
	}
}

// Validate checks all stage configurations.
func (c *Config) Validate() error {
	if err := c.Resolver.Validate(); err != nil {
		return err
	}
	if err := c.Window.Validate(); err != nil {
		return err
	}
	return c.analyticsConfig().Validate()
}

func (c *Config) analyticsConfig() *analytics.Config {
	return &analytics.Config{
		BucketMinutes: c.BucketMinutes,
		Window:        c.Window,
	}
}

// Result is the outcome of one pipeline run, handed to reporting.
type Result struct {
	// Dataset is the full consolidated dataset across all sources.
	Dataset *models.Dataset `json:"dataset"`
	// Windowed is the dataset restricted to the operating-hours window.
	Windowed *models.Dataset `json:"windowed"`
	// Metrics is computed over the windowed dataset.
	Metrics *analytics.Metrics `json:"metrics"`
}

// Run executes the pipeline over fully materialized frames.
//
// A frame whose headers resolve to no result or timestamp column is recorded
// as a note and contributes nothing; row-level parse failures are dropped
// and counted inside their frame. Zero surviving records across all frames
// is the single fatal condition.
func Run(frames []models.RawFrame, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.GetGlobalLogger().WithComponent("pipeline")
	log.WithField("frames", len(frames)).Info("Pipeline run started")

	var results []normalize.FrameResult
	var notes []string
	for i := range frames {
		frame := &frames[i]

		mapping, err := resolver.Resolve(frame.Source, frame.Headers, cfg.Resolver)
		if err != nil {
			log.WithError(err).WithField("source", frame.Source).Warn("Frame failed column resolution")
			notes = append(notes, fmt.Sprintf("frame %q skipped: %s", frame.Source, err.Error()))
			continue
		}

		results = append(results, normalize.NormalizeFrame(frame, mapping))
	}

	dataset, err := consolidate.Merge(results)
	if err != nil {
		// On the fatal path the notes never reach a dataset, so attach
		// them to the error: the caller should see which frames failed
		// resolution and why.
		if pe, ok := errors.AsPipelineError(err); ok && len(notes) > 0 {
			pe.WithContext("skipped_frames", strings.Join(notes, "; "))
		}
		return nil, err
	}
	dataset.Notes = append(dataset.Notes, notes...)

	windowed := consolidate.FilterWindow(dataset, cfg.Window)
	metrics := analytics.Compute(windowed, cfg.analyticsConfig())

	log.WithFields(logger.Fields{
		"operations": dataset.Len(),
		"in_window":  windowed.Len(),
		"dropped":    dataset.Dropped,
		"robots":     len(dataset.Robots),
	}).Info("Pipeline run finished")

	return &Result{
		Dataset:  dataset,
		Windowed: windowed,
		Metrics:  metrics,
	}, nil
}
