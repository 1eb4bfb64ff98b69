package errors

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"github.com/aws/smithy-go"
)

// Classify maps an arbitrary error into the taxonomy. Already-classified
// errors pass through unchanged, including when wrapped.
func Classify(err error) *Error {
	var classified *Error
	if stderrors.As(err, &classified) {
		return classified
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("operation deadline exceeded", err)
	}
	if stderrors.Is(err, context.Canceled) {
		return NewTimeoutError("operation cancelled", err)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return classifyAWS(apiErr, err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewTimeoutError("network timeout", err)
		}
		return NewNetworkError("network failure", err)
	}

	return New(CategoryInternal, SeverityMedium, "unclassified error", err)
}

// FromHTTPStatus classifies an upstream HTTP error response by status code.
func FromHTTPStatus(statusCode int, message string, cause error) *Error {
	switch {
	case statusCode == http.StatusNotFound:
		return NewNotFoundError(message, cause)
	case statusCode == http.StatusTooManyRequests:
		return NewThrottlingError(message, cause)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return NewUnauthorizedError(message, cause)
	case statusCode == http.StatusGatewayTimeout || statusCode == http.StatusRequestTimeout:
		return NewTimeoutError(message, cause)
	case statusCode >= 500:
		return NewUpstreamError(message, cause)
	case statusCode >= 400:
		return NewValidationError(message, cause)
	default:
		return New(CategoryInternal, SeverityMedium, message, cause)
	}
}

func classifyAWS(apiErr smithy.APIError, cause error) *Error {
	switch apiErr.ErrorCode() {
	case "ThrottlingException", "TooManyRequestsException", "RequestLimitExceeded":
		return NewThrottlingError("request throttled by AWS", cause)
	case "AccessDeniedException", "UnauthorizedException", "UnrecognizedClientException":
		return NewUnauthorizedError("AWS request not authorized", cause)
	case "ResourceNotFoundException":
		return NewNotFoundError("AWS resource not found", cause)
	case "ValidationException":
		return NewValidationError("AWS request validation failed", cause)
	}

	if apiErr.ErrorFault() == smithy.FaultServer {
		return NewUpstreamError("AWS service error", cause)
	}
	return New(CategoryInternal, SeverityMedium, "AWS request failed", cause)
}
