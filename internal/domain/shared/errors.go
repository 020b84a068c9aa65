package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput       = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized       = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrOrderNotFound      = NewDomainError("ORDER_NOT_FOUND", "Order not found")
	ErrEmptyOrder         = NewDomainError("EMPTY_ORDER", "Order must contain at least one line")
	ErrSyncAlreadyRunning = NewDomainError("SYNC_ALREADY_RUNNING", "A synchronization cycle is already in progress")
	ErrSourceUnavailable  = NewDomainError("SOURCE_UNAVAILABLE", "Source database is unreachable")
)
