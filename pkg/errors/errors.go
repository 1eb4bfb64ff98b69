// Package errors defines the error taxonomy shared by every deployment mode.
// Errors are classified into a fixed set of categories and severities so that
// the protocol formatters can translate them uniformly.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category identifies the class of failure.
type Category string

// Error categories
const (
	// CategoryValidation is returned when tool input fails schema validation
	CategoryValidation Category = "validation"

	// CategoryNotFound is returned when a tool, place, or forecast grid does not exist
	CategoryNotFound Category = "not_found"

	// CategoryNetwork is returned when an upstream request fails at the transport level
	CategoryNetwork Category = "network"

	// CategoryThrottling is returned when an upstream service rejects a request due to rate limits
	CategoryThrottling Category = "throttling"

	// CategoryTimeout is returned when an operation exceeds its deadline
	CategoryTimeout Category = "timeout"

	// CategoryUpstream is returned when an upstream service responds with a server error
	CategoryUpstream Category = "upstream"

	// CategoryUnauthorized is returned when credentials are missing or rejected
	CategoryUnauthorized Category = "unauthorized"

	// CategoryInternal is returned for everything else
	CategoryInternal Category = "internal"
)

// Severity indicates how serious a classified error is.
type Severity string

// Error severities
const (
	// SeverityLow covers expected, user-correctable failures
	SeverityLow Severity = "low"

	// SeverityMedium covers transient upstream failures
	SeverityMedium Severity = "medium"

	// SeverityHigh covers persistent upstream or configuration failures
	SeverityHigh Severity = "high"

	// SeverityCritical covers failures that indicate the service itself is broken
	SeverityCritical Severity = "critical"
)

// Error represents a classified error in the application.
type Error struct {
	// Category is the error category
	Category Category

	// Severity is the error severity
	Severity Severity

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new classified error.
func New(category Category, severity Severity, message string, cause error) *Error {
	return &Error{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    cause,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return New(CategoryValidation, SeverityLow, message, cause)
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(message string, cause error) *Error {
	return New(CategoryNotFound, SeverityLow, message, cause)
}

// NewNetworkError creates a new network error.
func NewNetworkError(message string, cause error) *Error {
	return New(CategoryNetwork, SeverityMedium, message, cause)
}

// NewThrottlingError creates a new throttling error.
func NewThrottlingError(message string, cause error) *Error {
	return New(CategoryThrottling, SeverityMedium, message, cause)
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(message string, cause error) *Error {
	return New(CategoryTimeout, SeverityMedium, message, cause)
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(message string, cause error) *Error {
	return New(CategoryUpstream, SeverityHigh, message, cause)
}

// NewUnauthorizedError creates a new unauthorized error.
func NewUnauthorizedError(message string, cause error) *Error {
	return New(CategoryUnauthorized, SeverityHigh, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return New(CategoryInternal, SeverityCritical, message, cause)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return hasCategory(err, CategoryValidation)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasCategory(err, CategoryNotFound)
}

// IsNetwork checks if the error is a network error.
func IsNetwork(err error) bool {
	return hasCategory(err, CategoryNetwork)
}

// IsThrottling checks if the error is a throttling error.
func IsThrottling(err error) bool {
	return hasCategory(err, CategoryThrottling)
}

// IsTimeout checks if the error is a timeout error.
func IsTimeout(err error) bool {
	return hasCategory(err, CategoryTimeout)
}

// IsUpstream checks if the error is an upstream error.
func IsUpstream(err error) bool {
	return hasCategory(err, CategoryUpstream)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasCategory(err, CategoryUnauthorized)
}

// IsInternal checks if the error is an internal error.
func IsInternal(err error) bool {
	return hasCategory(err, CategoryInternal)
}

// IsRetryable reports whether a classified error is worth retrying.
// Validation and not-found failures are deterministic, so retrying them
// only burns attempts against upstream rate limits.
func IsRetryable(err error) bool {
	e := Classify(err)
	switch e.Category {
	case CategoryValidation, CategoryNotFound, CategoryUnauthorized:
		return false
	default:
		return true
	}
}

func hasCategory(err error, category Category) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Category == category
}
