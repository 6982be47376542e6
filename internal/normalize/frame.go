package normalize

import (
	"time"

	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/internal/resolver"
	"tradelog-analyzer/pkg/logger"
)

// FrameResult is the outcome of normalizing one raw frame: the surviving
// records, how many rows were dropped, and the header the result column was
// resolved from (used for schema-drift notes across sources).
type FrameResult struct {
	Source       string
	Operations   []models.Operation
	Dropped      int
	ResultHeader string
}

// NormalizeFrame turns a resolved raw frame into operation records. Rows
// whose result or timestamp cannot be parsed are dropped and counted, never
// fatal to the frame. Short (truncated) rows read as empty cells and fall
// through the same drop path.
func NormalizeFrame(frame *models.RawFrame, mapping *resolver.Mapping) FrameResult {
	log := logger.GetGlobalLogger().WithComponent("normalize").WithField("source", frame.Source)

	result := FrameResult{
		Source:       frame.Source,
		Operations:   make([]models.Operation, 0, len(frame.Rows)),
		ResultHeader: mapping.ResultHeader,
	}

	for _, row := range frame.Rows {
		value, err := ParseResult(frame.Cell(row, mapping.Result))
		if err != nil {
			result.Dropped++
			continue
		}

		var openTime time.Time
		if mapping.HasCombined() {
			openTime, err = ParseTimestamp(frame.Cell(row, mapping.DateTime))
		} else {
			openTime, err = ParseSplitTimestamp(
				frame.Cell(row, mapping.Date),
				frame.Cell(row, mapping.Time))
		}
		if err != nil {
			result.Dropped++
			continue
		}

		op := models.Operation{
			Robot:    frame.Source,
			OpenTime: openTime,
			Result:   value,
		}

		// A robot column inside the frame overrides the frame-level id;
		// single-workbook uploads carry all robots in one sheet.
		if mapping.Robot >= 0 {
			if name := frame.Cell(row, mapping.Robot); name != "" {
				op.Robot = name
			}
		}

		// Close time is informational; a bad value never drops the row.
		if mapping.Close >= 0 {
			if closeTime, cerr := ParseTimestamp(frame.Cell(row, mapping.Close)); cerr == nil {
				op.CloseTime = closeTime
			}
		}

		if op.Validate() != nil {
			result.Dropped++
			continue
		}
		result.Operations = append(result.Operations, op)
	}

	log.WithFields(logger.Fields{
		"rows":    len(frame.Rows),
		"valid":   len(result.Operations),
		"dropped": result.Dropped,
	}).Debug("Frame normalized")

	return result
}
