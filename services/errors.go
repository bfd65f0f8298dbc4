package services

import "net/http"

// Error kinds surfaced to clients alongside the message. Stable across
// releases; gateway-facing retry logic keys off EXTERNAL_SERVICE.
const (
	KindValidation      = "VALIDATION"
	KindNotFound        = "NOT_FOUND"
	KindConflict        = "CONFLICT"
	KindExternalService = "EXTERNAL_SERVICE"
	KindSecurity        = "SECURITY"
	KindInternal        = "INTERNAL"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func newValidationError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Kind: KindValidation, Message: msg}
}

func newNotFoundError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Kind: KindNotFound, Message: msg}
}

func newConflictError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Kind: KindConflict, Message: msg}
}

func newExternalServiceError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadGateway, Kind: KindExternalService, Message: msg}
}

func newSecurityError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Kind: KindSecurity, Message: msg}
}

func newInternalError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Kind: KindInternal, Message: msg}
}
