// Package errors defines the error taxonomy of the trading-log pipeline.
//
// Errors carry a category, a specific code, an optional suggestion for the
// operator and arbitrary context values. Row-level problems (unparsable
// numbers or timestamps) are recovered into drop counters by the pipeline and
// normally never surface as errors; frame-level problems (missing columns,
// unreadable files) become notes unless every frame fails. The single
// pipeline-fatal condition is an empty dataset after consolidation.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors.
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryPipeline      ErrorCategory = "pipeline"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories.
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeEncodingError  ErrorCode = "encoding_error"

	// Parse errors (frame or row scoped)
	CodeInvalidFormat    ErrorCode = "invalid_format"
	CodeMissingColumn    ErrorCode = "missing_column"
	CodeInvalidNumeric   ErrorCode = "invalid_numeric"
	CodeInvalidTimestamp ErrorCode = "invalid_timestamp"

	// Validation errors
	CodeMissingField ErrorCode = "missing_field"
	CodeOutOfRange   ErrorCode = "out_of_range"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Pipeline errors
	CodeEmptyDataset ErrorCode = "empty_dataset"
	CodeSchemaDrift  ErrorCode = "schema_drift"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// PipelineError is the base error type for all application errors.
type PipelineError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate process exit code for the error.
func (e *PipelineError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryPipeline, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error.
func (e *PipelineError) WithContext(key string, value interface{}) *PipelineError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *PipelineError) WithSuggestion(suggestion string) *PipelineError {
	e.Suggestion = suggestion
	return e
}

// New creates a new PipelineError.
func New(category ErrorCategory, code ErrorCode, message string) *PipelineError {
	return &PipelineError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with PipelineError context.
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *PipelineError {
	if err == nil {
		return nil
	}

	return &PipelineError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// FileError creates a file-related error.
func FileError(code ErrorCode, path string, err error) *PipelineError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "re-export the log from the trading platform and try again"
	case CodeEncodingError:
		message = fmt.Sprintf("could not decode file: %s", path)
		suggestion = "check the export encoding; latin-1 and UTF-8 are supported"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// MissingColumnError reports that a frame's header row matched no synonym for
// a required role. Fatal to that frame only.
func MissingColumnError(source, role string, headers []string) *PipelineError {
	return New(CategoryParse, CodeMissingColumn,
		fmt.Sprintf("source %q: no header matches the %s role", source, role)).
		WithSuggestion("rename the column to a recognized name or extend the synonym table").
		WithContext("source", source).
		WithContext("role", role).
		WithContext("headers", strings.Join(headers, ", "))
}

// EmptyDatasetError is the single pipeline-fatal condition: zero records
// survived normalization across all supplied frames.
func EmptyDatasetError(frames, dropped int) *PipelineError {
	return New(CategoryPipeline, CodeEmptyDataset,
		fmt.Sprintf("no valid operations found across %d frame(s) (%d row(s) dropped)", frames, dropped)).
		WithSuggestion("verify the exports contain result and date columns with parsable values").
		WithContext("frames", frames).
		WithContext("dropped", dropped)
}

// ConfigError creates a configuration-related error.
func ConfigError(code ErrorCode, setting string, err error) *PipelineError {
	message := fmt.Sprintf("invalid configuration: %s", setting)
	if code == CodeMissingConfig {
		message = fmt.Sprintf("missing configuration: %s", setting)
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.WithContext("setting", setting)
}

// ValidationError creates a validation-related error.
func ValidationError(code ErrorCode, field string, value interface{}, err error) *PipelineError {
	message := fmt.Sprintf("validation failed for %s", field)
	if value != nil {
		message = fmt.Sprintf("validation failed for %s: %v", field, value)
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.WithContext("field", field)
}

// InternalError creates an internal error.
func InternalError(operation string, err error) *PipelineError {
	return Wrap(err, CategoryInternal, CodeUnexpectedError,
		fmt.Sprintf("unexpected error during %s", operation)).
		WithContext("operation", operation)
}

// AsPipelineError unwraps err to a PipelineError if one is in the chain.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// GetCode extracts the error code from an error, or empty if it is not a
// PipelineError.
func GetCode(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsEmptyDataset reports whether err is the pipeline-fatal empty dataset
// condition.
func IsEmptyDataset(err error) bool {
	return IsCode(err, CodeEmptyDataset)
}

// IsMissingColumn reports whether err is a frame-level missing column error.
func IsMissingColumn(err error) bool {
	return IsCode(err, CodeMissingColumn)
}

// GetExitCode returns the exit code for any error.
func GetExitCode(err error) int {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.GetExitCode()
	}
	return 1
}
