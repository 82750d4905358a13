// Package services provides the business logic layer between handlers and the session store.
// Services validate input, orchestrate the store, cache and analytics engine, and translate
// failures into ServiceErrors with stable codes.
package services

import (
	"errors"

	"github.com/classpulse/classpulse/internal/store"
)

// Error codes
const (
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeSessionEnded    = "SESSION_ENDED"
	CodeSessionActive   = "SESSION_ACTIVE"
	CodeInvalidSample   = "INVALID_SAMPLE"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeStoreError      = "STORE_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// fromStoreError maps a store failure onto a ServiceError
func fromStoreError(err error, sessionID string) *ServiceError {
	if errors.Is(err, store.ErrSessionNotFound) {
		return NewServiceErrorWithDetails(CodeSessionNotFound, "session not found",
			map[string]interface{}{"session_id": sessionID})
	}
	if errors.Is(err, store.ErrSessionEnded) {
		return NewServiceErrorWithDetails(CodeSessionEnded, "session has ended",
			map[string]interface{}{"session_id": sessionID})
	}
	return NewServiceError(CodeStoreError, err.Error())
}

// ErrorCode returns the code of a ServiceError anywhere in err's chain, or "" otherwise
func ErrorCode(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ""
}

// IsTransient reports whether retrying the operation that returned err could succeed
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	code := ErrorCode(err)
	return code == "" || code == CodeStoreError
}
