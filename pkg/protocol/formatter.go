package protocol

import (
	"net/http"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
)

// JSON-RPC 2.0 error codes used by the MCP formatter.
const (
	// CodeInvalidParams is the JSON-RPC invalid params error code.
	CodeInvalidParams = -32602

	// CodeMethodNotFound is the JSON-RPC method not found error code.
	CodeMethodNotFound = -32601

	// CodeServerError is the implementation-defined server error code.
	CodeServerError = -32000
)

// Formatter renders a classified error as the payload shape expected by the
// active protocol. The payload is always JSON-serializable.
type Formatter interface {
	// Mode returns the deployment mode this formatter serves.
	Mode() DeploymentMode

	// FormatError renders err for the wire. The err is classified first, so
	// callers may pass any error.
	FormatError(err error) map[string]any
}

// ForMode returns the formatter for the given deployment mode.
// Unknown modes fall back to the local formatter.
func ForMode(mode DeploymentMode) Formatter {
	switch mode {
	case ModeMCP:
		return &jsonRPCFormatter{}
	case ModeBedrockAgent:
		return &lambdaFormatter{}
	default:
		return &plainFormatter{}
	}
}

// plainFormatter renders errors as a flat map for direct in-process callers.
type plainFormatter struct{}

func (*plainFormatter) Mode() DeploymentMode { return ModeLocal }

func (*plainFormatter) FormatError(err error) map[string]any {
	e := errors.Classify(err)
	return map[string]any{
		"error":    true,
		"category": string(e.Category),
		"severity": string(e.Severity),
		"message":  e.Error(),
	}
}

// jsonRPCFormatter renders errors as JSON-RPC 2.0 error objects for the MCP
// transport.
type jsonRPCFormatter struct{}

func (*jsonRPCFormatter) Mode() DeploymentMode { return ModeMCP }

func (*jsonRPCFormatter) FormatError(err error) map[string]any {
	e := errors.Classify(err)

	code := CodeServerError
	switch e.Category {
	case errors.CategoryValidation:
		code = CodeInvalidParams
	case errors.CategoryNotFound:
		code = CodeMethodNotFound
	}

	return map[string]any{
		"code":    code,
		"message": e.Error(),
		"data": map[string]any{
			"category": string(e.Category),
			"severity": string(e.Severity),
		},
	}
}

// lambdaFormatter renders errors in the Bedrock agent action-group response
// envelope, with the HTTP status derived from the error category.
type lambdaFormatter struct{}

func (*lambdaFormatter) Mode() DeploymentMode { return ModeBedrockAgent }

func (*lambdaFormatter) FormatError(err error) map[string]any {
	e := errors.Classify(err)

	return map[string]any{
		"httpStatusCode": StatusForCategory(e.Category),
		"body": map[string]any{
			"error":    e.Error(),
			"category": string(e.Category),
			"severity": string(e.Severity),
		},
	}
}

// StatusForCategory maps an error category to an HTTP status code.
func StatusForCategory(category errors.Category) int {
	switch category {
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryThrottling:
		return http.StatusTooManyRequests
	case errors.CategoryTimeout:
		return http.StatusGatewayTimeout
	case errors.CategoryUpstream:
		return http.StatusBadGateway
	case errors.CategoryUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
