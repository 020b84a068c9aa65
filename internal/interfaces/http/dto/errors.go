package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
)

// Domain error codes surfaced through the API
const (
	ErrCodeEmptyOrder         = "EMPTY_ORDER"
	ErrCodeInvalidLine        = "INVALID_LINE"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodePersistence        = "PERSISTENCE_FAILURE"
	ErrCodeSyncAlreadyRunning = "SYNC_ALREADY_RUNNING"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,

	ErrCodeEmptyOrder:         http.StatusUnprocessableEntity,
	ErrCodeInvalidLine:        http.StatusUnprocessableEntity,
	ErrCodeOrderNotFound:      http.StatusNotFound,
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodePersistence:        http.StatusInternalServerError,
	ErrCodeSyncAlreadyRunning: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
