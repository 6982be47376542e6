// Package server exposes the pipeline over HTTP: a multipart upload endpoint
// that runs one analysis per request and returns the JSON report. Each
// request gets a fresh pipeline; the server keeps no state between requests.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"tradelog-analyzer/internal/ingest"
	"tradelog-analyzer/internal/pipeline"
	apperrors "tradelog-analyzer/pkg/errors"
	"tradelog-analyzer/pkg/logger"
)

// Config holds HTTP server settings.
type Config struct {
	Addr string `json:"addr"`
	// MaxUploadBytes caps the multipart body; oversized uploads are
	// rejected before the pipeline runs.
	MaxUploadBytes int64 `json:"max_upload_bytes"`

	Pipeline  *pipeline.Config         `json:"pipeline"`
	Delimited *ingest.DelimitedOptions `json:"delimited"`
}

// DefaultConfig returns the standard server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		MaxUploadBytes: 20 << 20, // 20 MB, matching the upload ceiling
		Pipeline:       pipeline.DefaultConfig(),
		Delimited:      ingest.DefaultDelimitedOptions(),
	}
}

// Server handles analysis uploads.
type Server struct {
	config *Config
	logger logger.Logger
}

// NewServer creates a server with the given configuration.
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("server"),
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/analyze", s.handleAnalyze)

	return r
}

// ListenAndServe runs the HTTP server until it fails.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.WithField("addr", s.config.Addr).Info("HTTP server listening")
	return srv.ListenAndServe()
}

// requestID attaches a fresh request id to every request.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logger.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestIDFrom(r.Context()),
			"duration":   time.Since(start).String(),
		}).Info("Request handled")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// errorResponse is the JSON error payload.
type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := errorResponse{
		Error:     err.Error(),
		Code:      string(apperrors.GetCode(err)),
		RequestID: requestIDFrom(r.Context()),
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}
