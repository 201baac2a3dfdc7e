package common

import (
	"net/http"
)

// ErrorResponse is the API error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// CustomError carries an error code and HTTP status alongside the cause.
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError creates a new CustomError.
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Error codes.
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"     // 400
	ErrCodeNotFound        = "NOT_FOUND"           // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"     // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"   // 429
	ErrCodeInternalError   = "INTERNAL_ERROR"      // 500
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout  = "GATEWAY_TIMEOUT"     // 504
)

// Predefined errors.
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "request timed out", http.StatusRequestTimeout, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)
	ErrInternalError   = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrUnavailable     = NewError(ErrCodeUnavailable, "service temporarily unavailable", http.StatusServiceUnavailable, nil)

	ErrInvalidImageFormat = NewError("INVALID_IMAGE_FORMAT", "invalid image format", http.StatusBadRequest, nil)
	ErrInvalidImageSize   = NewError("INVALID_IMAGE_SIZE", "image size exceeds limit", http.StatusBadRequest, nil)
	ErrModelServiceError  = NewError("MODEL_SERVICE_ERROR", "model service error", http.StatusServiceUnavailable, nil)
)
