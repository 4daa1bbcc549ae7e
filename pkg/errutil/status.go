package errutil

import "net/http"

// CoreStatus is a transport-agnostic failure code. Business-rule violations
// and infrastructure failures get distinct codes so callers can tell a
// retryable storage error from a rule rejection.
type CoreStatus string

const (
	StatusBadRequest          CoreStatus = "BAD_REQUEST"
	StatusValidationFailed    CoreStatus = "VALIDATION_FAILED"
	StatusUnauthorized        CoreStatus = "UNAUTHORIZED"
	StatusIdentityMismatch    CoreStatus = "IDENTITY_MISMATCH"
	StatusForbidden           CoreStatus = "FORBIDDEN"
	StatusNotFound            CoreStatus = "NOT_FOUND"
	StatusConflict            CoreStatus = "CONFLICT"
	StatusDuplicateCompletion CoreStatus = "DUPLICATE_COMPLETION"
	StatusAlreadyRated        CoreStatus = "ALREADY_RATED"
	StatusAlreadyProcessed    CoreStatus = "ALREADY_PROCESSED"
	StatusSuspiciousVelocity  CoreStatus = "SUSPICIOUS_VELOCITY"
	StatusTooManyRequests     CoreStatus = "TOO_MANY_REQUESTS"
	StatusInternal            CoreStatus = "INTERNAL"
	StatusTimeout             CoreStatus = "TIMEOUT"
)

// HTTPStatus converts the CoreStatus to its closest HTTP status code.
func (s CoreStatus) HTTPStatus() int {
	switch s {
	case StatusBadRequest, StatusValidationFailed:
		return http.StatusBadRequest
	case StatusUnauthorized, StatusIdentityMismatch:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict, StatusDuplicateCompletion, StatusAlreadyRated, StatusAlreadyProcessed:
		return http.StatusConflict
	case StatusSuspiciousVelocity, StatusTooManyRequests:
		return http.StatusTooManyRequests
	case StatusTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a client may safely retry the failed operation.
// Velocity rejections are soft blocks; everything else mutating is not
// auto-retryable.
func (s CoreStatus) Retryable() bool {
	return s == StatusSuspiciousVelocity || s == StatusTooManyRequests
}
