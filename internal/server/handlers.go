package server

import (
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"

	"tradelog-analyzer/internal/ingest"
	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/internal/pipeline"
	"tradelog-analyzer/internal/reporter"
	apperrors "tradelog-analyzer/pkg/errors"
	"tradelog-analyzer/pkg/logger"
)

type ctxKey int

const requestIDKey ctxKey = iota

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// handleAnalyze handles POST /api/analyze.
//
// The request is multipart form data carrying either a single "workbook"
// field (xlsx) or one or more "files" fields (delimited robot exports). The
// response is the JSON report over the analyzed upload.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithField("request_id", requestIDFrom(r.Context()))

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		log.WithError(err).Warn("Rejecting upload")
		s.renderError(w, r, http.StatusRequestEntityTooLarge,
			apperrors.ValidationError(apperrors.CodeOutOfRange, "upload", nil, err).
				WithSuggestion("the upload exceeds the size limit or is not valid multipart form data"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	frames, err := s.framesFromUpload(r.MultipartForm, log)
	if err != nil {
		s.renderError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	result, err := pipeline.Run(frames, s.config.Pipeline)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsEmptyDataset(err) || apperrors.IsMissingColumn(err) {
			status = http.StatusUnprocessableEntity
		}
		log.WithError(err).Warn("Pipeline failed")
		s.renderError(w, r, status, err)
		return
	}

	render.JSON(w, r, reporter.BuildReport(result))
}

// framesFromUpload extracts raw frames from the multipart form.
func (s *Server) framesFromUpload(form *multipart.Form, log logger.Logger) ([]models.RawFrame, error) {
	if workbooks := form.File["workbook"]; len(workbooks) > 0 {
		header := workbooks[0]
		if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
			return nil, apperrors.ValidationError(apperrors.CodeMissingField, "workbook", header.Filename, nil).
				WithSuggestion("the workbook field must carry an .xlsx file")
		}

		file, err := header.Open()
		if err != nil {
			return nil, apperrors.FileError(apperrors.CodeFileCorrupted, header.Filename, err)
		}
		defer file.Close()

		log.WithField("workbook", header.Filename).Info("Analyzing workbook upload")
		return ingest.ReadWorkbookFrom(file, header.Filename)
	}

	uploads := form.File["files"]
	if len(uploads) == 0 {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "upload", nil, nil).
			WithSuggestion("send a 'workbook' file or one or more 'files' entries")
	}

	var frames []models.RawFrame
	for _, header := range uploads {
		file, err := header.Open()
		if err != nil {
			log.WithError(err).WithField("file", header.Filename).Warn("Skipping unreadable upload part")
			continue
		}

		frame, err := ingest.ReadDelimitedFrom(file, header.Filename, s.config.Delimited)
		file.Close()
		if err != nil {
			log.WithError(err).WithField("file", header.Filename).Warn("Skipping unparsable upload part")
			continue
		}
		frames = append(frames, *frame)
	}

	log.WithField("frames", len(frames)).Info("Analyzing delimited uploads")
	return frames, nil
}
