package ingest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/pkg/errors"
	"tradelog-analyzer/pkg/logger"
)

// ReadWorkbook reads an xlsx workbook from disk into one raw frame per
// non-empty sheet. The sheet name becomes the frame's source id.
func ReadWorkbook(path string) ([]models.RawFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	defer f.Close()

	return framesFromWorkbook(f, path)
}

// ReadWorkbookFrom reads an xlsx workbook from a stream (an upload body).
// The name is used for source-id fallbacks and error context only.
func ReadWorkbookFrom(r io.Reader, name string) ([]models.RawFrame, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, name, err)
	}
	defer f.Close()

	return framesFromWorkbook(f, name)
}

func framesFromWorkbook(f *excelize.File, name string) ([]models.RawFrame, error) {
	log := logger.GetGlobalLogger().WithComponent("ingest").WithField("workbook", name)

	var frames []models.RawFrame
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			log.WithError(err).WithField("sheet", sheet).Warn("Skipping unreadable sheet")
			continue
		}
		if len(rows) < 2 {
			log.WithField("sheet", sheet).Debug("Skipping sheet without data rows")
			continue
		}

		headers := make([]string, len(rows[0]))
		for j, h := range rows[0] {
			headers[j] = strings.TrimSpace(h)
		}

		frames = append(frames, models.RawFrame{
			Source:  models.SanitizeSource(sheet, fmt.Sprintf("sheet_%d", i+1)),
			Headers: headers,
			Rows:    rows[1:],
		})
	}

	if len(frames) == 0 {
		return nil, errors.FileError(errors.CodeFileCorrupted, name, nil).
			WithSuggestion("the workbook contains no sheet with a header and data rows")
	}

	log.WithField("frames", len(frames)).Info("Workbook ingested")
	return frames, nil
}
