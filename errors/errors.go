package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an application error class.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS   ErrorCode = 1003

	// Intake / input shape
	ErrorCode_INVALID_PAYLOAD    ErrorCode = 2000
	ErrorCode_STUDY_DIR_INVALID  ErrorCode = 2001
	ErrorCode_NO_INPUT_FILES     ErrorCode = 2002
	ErrorCode_UNSUPPORTED_FORMAT ErrorCode = 2003

	// External collaborators
	ErrorCode_TRANSCRIPTION_FAILED   ErrorCode = 3000
	ErrorCode_LLM_REQUEST_FAILED     ErrorCode = 3001
	ErrorCode_LLM_RESPONSE_MALFORMED ErrorCode = 3002
	ErrorCode_CONTRACT_VIOLATION     ErrorCode = 3003
	ErrorCode_STORAGE_FAILED         ErrorCode = 3004
	ErrorCode_CACHE_FAILED           ErrorCode = 3005

	// Pipeline lifecycle
	ErrorCode_RUN_NOT_FOUND     ErrorCode = 4000
	ErrorCode_RUN_ALREADY_LIVE  ErrorCode = 4001
	ErrorCode_PROCESSING_FAILED ErrorCode = 4002

	// Database
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 5000
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 5001
)

// String returns the symbolic name for an error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCode_HTTP_OK:
		return "OK"
	case ErrorCode_INTERNAL:
		return "INTERNAL"
	case ErrorCode_INVALID_ARGUMENT:
		return "INVALID_ARGUMENT"
	case ErrorCode_NOT_FOUND:
		return "NOT_FOUND"
	case ErrorCode_ALREADY_EXISTS:
		return "ALREADY_EXISTS"
	case ErrorCode_INVALID_PAYLOAD:
		return "INVALID_PAYLOAD"
	case ErrorCode_STUDY_DIR_INVALID:
		return "STUDY_DIR_INVALID"
	case ErrorCode_NO_INPUT_FILES:
		return "NO_INPUT_FILES"
	case ErrorCode_UNSUPPORTED_FORMAT:
		return "UNSUPPORTED_FORMAT"
	case ErrorCode_TRANSCRIPTION_FAILED:
		return "TRANSCRIPTION_FAILED"
	case ErrorCode_LLM_REQUEST_FAILED:
		return "LLM_REQUEST_FAILED"
	case ErrorCode_LLM_RESPONSE_MALFORMED:
		return "LLM_RESPONSE_MALFORMED"
	case ErrorCode_CONTRACT_VIOLATION:
		return "CONTRACT_VIOLATION"
	case ErrorCode_STORAGE_FAILED:
		return "STORAGE_FAILED"
	case ErrorCode_CACHE_FAILED:
		return "CACHE_FAILED"
	case ErrorCode_RUN_NOT_FOUND:
		return "RUN_NOT_FOUND"
	case ErrorCode_RUN_ALREADY_LIVE:
		return "RUN_ALREADY_LIVE"
	case ErrorCode_PROCESSING_FAILED:
		return "PROCESSING_FAILED"
	case ErrorCode_DB_CONNECTION_FAILED:
		return "DB_CONNECTION_FAILED"
	case ErrorCode_DB_QUERY_FAILED:
		return "DB_QUERY_FAILED"
	default:
		return "UNKNOWN"
	}
}

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid request payload",
	}
}

// Intake Errors
func ErrStudyDirInvalid(path string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_STUDY_DIR_INVALID,
		Message:  fmt.Sprintf("Study directory is not readable: %s", path),
	}
}

func ErrNoInputFiles(path string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_NO_INPUT_FILES,
		Message:  fmt.Sprintf("No recognizable input files in %s", path),
	}
}

// External-collaborator Errors. These never escape the resolution core; they
// exist for logging and for surfacing degraded stages through the API.
func ErrTranscriptionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_TRANSCRIPTION_FAILED,
		Message:  "Speech-to-text transcription failed",
	}
}

func ErrLLMRequestFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_LLM_REQUEST_FAILED,
		Message:  "LLM request failed",
	}
}

func ErrLLMResponseMalformed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_LLM_RESPONSE_MALFORMED,
		Message:  "LLM response could not be parsed",
	}
}

func ErrContractViolation(service string) AppError {
	return AppError{
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_CONTRACT_VIOLATION,
		Message:  fmt.Sprintf("External service violated its assignment contract: %s", service),
	}
}

func ErrStorageFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  "Object storage operation failed",
	}
}

// Pipeline Errors
func ErrRunNotFound(id string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_RUN_NOT_FOUND,
		Message:  fmt.Sprintf("Resolution run %s not found", id),
	}
}

func ErrRunAlreadyLive(path string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_RUN_ALREADY_LIVE,
		Message:  fmt.Sprintf("A run is already processing %s", path),
	}
}

func ErrProcessingFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PROCESSING_FAILED,
		Message:  "Pipeline processing failed",
	}
}

// Database Errors
func ErrDBConnectionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_CONNECTION_FAILED,
		Message:  "Database connection failed",
	}
}

func ErrDBQueryFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}
}
