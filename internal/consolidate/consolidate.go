// Package consolidate merges per-source normalized records into one
// time-ordered dataset and restricts datasets to the configured
// operating-hours window.
package consolidate

import (
	"fmt"
	"sort"
	"strings"

	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/internal/normalize"
	"tradelog-analyzer/pkg/errors"
	"tradelog-analyzer/pkg/logger"
)

// Merge concatenates the per-frame record sets in input order, stable-sorts
// the union by open time, and computes the dataset invariants (robot set,
// date range, summed drop count).
//
// Differing result headers across frames are recorded as a schema-drift note;
// resolution is per-frame so drift can never block consolidation. The only
// fatal condition is zero surviving records across all frames.
func Merge(frames []normalize.FrameResult) (*models.Dataset, error) {
	log := logger.GetGlobalLogger().WithComponent("consolidate")

	ds := &models.Dataset{}
	headers := make(map[string]bool)
	for _, frame := range frames {
		ds.Operations = append(ds.Operations, frame.Operations...)
		ds.Dropped += frame.Dropped
		if frame.ResultHeader != "" {
			headers[frame.ResultHeader] = true
		}
	}

	if len(ds.Operations) == 0 {
		return nil, errors.EmptyDatasetError(len(frames), ds.Dropped)
	}

	// Stable keeps original input order for equal timestamps.
	sort.SliceStable(ds.Operations, func(i, j int) bool {
		return ds.Operations[i].OpenTime.Before(ds.Operations[j].OpenTime)
	})

	finalize(ds)

	if len(headers) > 1 {
		names := make([]string, 0, len(headers))
		for h := range headers {
			names = append(names, h)
		}
		sort.Strings(names)
		note := fmt.Sprintf("sources resolved different result headers: %s", strings.Join(names, ", "))
		ds.Notes = append(ds.Notes, note)
		log.Warn(note)
	}

	log.WithFields(logger.Fields{
		"operations": len(ds.Operations),
		"robots":     len(ds.Robots),
		"dropped":    ds.Dropped,
		"range":      ds.Range.String(),
	}).Info("Consolidated dataset built")

	return ds, nil
}

// finalize recomputes the derived fields of a dataset whose Operations slice
// is already sorted.
func finalize(ds *models.Dataset) {
	set := make(map[string]bool)
	for i := range ds.Operations {
		set[ds.Operations[i].Robot] = true
	}
	ds.Robots = make([]string, 0, len(set))
	for robot := range set {
		ds.Robots = append(ds.Robots, robot)
	}
	sort.Strings(ds.Robots)

	if len(ds.Operations) > 0 {
		ds.Range = models.DateRange{
			From: ds.Operations[0].OpenTime,
			To:   ds.Operations[len(ds.Operations)-1].OpenTime,
		}
	} else {
		ds.Range = models.DateRange{}
	}
}
