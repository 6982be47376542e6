package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/pkg/errors"
	"tradelog-analyzer/pkg/logger"
)

// ReadDelimited reads one delimited robot export from disk. The sanitized
// file base name (without extension) becomes the frame's source id.
func ReadDelimited(path string, opts *DelimitedOptions) (*models.RawFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	defer f.Close()

	return ReadDelimitedFrom(f, path, opts)
}

// ReadDelimitedFrom reads one delimited robot export from a stream. The name
// provides the source id and error context.
func ReadDelimitedFrom(r io.Reader, name string, opts *DelimitedOptions) (*models.RawFrame, error) {
	if opts == nil {
		opts = DefaultDelimitedOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Encoding == EncodingLatin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}

	// Broker exports prefix the table with free-form banner lines that are
	// not valid CSV; skip them as raw lines before handing the rest to the
	// csv reader.
	buffered := bufio.NewReader(r)
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := buffered.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, errors.FileError(errors.CodeFileCorrupted, name, nil).
					WithSuggestion(fmt.Sprintf("the file ended inside the %d-line banner; check the export", opts.SkipRows))
			}
			return nil, errors.FileError(errors.CodeFileCorrupted, name, err)
		}
	}

	reader := csv.NewReader(buffered)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.FileError(errors.CodeFileCorrupted, name, nil).
				WithSuggestion("the file contains no header row after the banner")
		}
		return nil, errors.FileError(errors.CodeInvalidFormat, name, err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	frame := &models.RawFrame{
		Source:  models.SanitizeSource(name, "robot"),
		Headers: headers,
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed line is recoverable; normalization will drop
			// anything unusable that slipped through.
			logger.GetGlobalLogger().WithComponent("ingest").
				WithError(err).WithField("file", name).Debug("Skipping malformed line")
			continue
		}
		if isEmptyRecord(record) {
			continue
		}
		frame.Rows = append(frame.Rows, record)
	}

	logger.GetGlobalLogger().WithComponent("ingest").WithFields(logger.Fields{
		"file":   name,
		"source": frame.Source,
		"rows":   len(frame.Rows),
	}).Info("Delimited export ingested")

	return frame, nil
}

// ReadDelimitedFiles reads a batch of exports. Files that cannot be read are
// skipped with a note; the pipeline fails later with an empty dataset when
// nothing at all survives.
func ReadDelimitedFiles(paths []string, opts *DelimitedOptions) ([]models.RawFrame, []string) {
	var frames []models.RawFrame
	var notes []string

	for _, path := range paths {
		frame, err := ReadDelimited(path, opts)
		if err != nil {
			notes = append(notes, fmt.Sprintf("skipped %s: %s", path, err.Error()))
			continue
		}
		frames = append(frames, *frame)
	}

	return frames, notes
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
