package errors

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeBadGateway         = "BAD_GATEWAY"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Success   bool        `json:"success"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

var exposeDetails atomic.Bool

func init() {
	exposeDetails.Store(true)
}

// SetExposeDetails controls whether store error payloads reach clients.
// Production collapses them.
func SetExposeDetails(expose bool) {
	exposeDetails.Store(expose)
}

// RespondWithError sends an error response and aborts the handler chain
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	body := *err
	body.Success = false
	body.RequestID = c.GetString(constants.ContextKeyRequestID)
	if statusCode >= http.StatusInternalServerError && !exposeDetails.Load() {
		body.Message = "Internal server error"
		body.Details = nil
	}
	c.AbortWithStatusJSON(statusCode, body)
}

var defaultMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request",
	http.StatusUnauthorized:        "Authentication required",
	http.StatusForbidden:           "Access denied",
	http.StatusNotFound:            "Resource not found",
	http.StatusConflict:            "Resource conflict",
	http.StatusInternalServerError: "Internal server error",
	http.StatusBadGateway:          "Upstream service returned an invalid response",
	http.StatusServiceUnavailable:  "Service temporarily unavailable",
}

func send(c *gin.Context, status int, code, message string, details interface{}) {
	if message == "" {
		message = defaultMessages[status]
	}
	RespondWithError(c, status, NewAPIErrorWithDetails(code, message, details))
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	send(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	send(c, http.StatusForbidden, ErrCodeForbidden, message, nil)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	send(c, http.StatusNotFound, ErrCodeNotFound, message, nil)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	send(c, http.StatusBadRequest, ErrCodeInvalidInput, message, nil)
}

// BadRequestWithDetails sends a 400 response; details are dropped in production
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	if !exposeDetails.Load() {
		details = nil
	}
	send(c, http.StatusBadRequest, ErrCodeInvalidInput, message, details)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	send(c, http.StatusConflict, ErrCodeConflict, message, nil)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	send(c, http.StatusInternalServerError, ErrCodeInternalError, message, nil)
}

// StoreError sends a 500 response carrying the raw store error outside production
func StoreError(c *gin.Context, message string, err error) {
	var details interface{}
	if err != nil {
		details = err.Error()
	}
	send(c, http.StatusInternalServerError, ErrCodeInternalError, message, details)
}

// BadGateway sends a 502 response for an unusable upstream reply
func BadGateway(c *gin.Context, message string) {
	send(c, http.StatusBadGateway, ErrCodeBadGateway, message, nil)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	send(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message, nil)
}
