// Package bedrock adapts tool dispatch to Bedrock agent action-group
// invocations delivered through Lambda.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/dispatch"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
)

const messageVersion = "1.0"

// Handler executes Bedrock agent action-group requests against the tool
// dispatcher.
type Handler struct {
	dispatcher *dispatch.Manager
}

// NewHandler creates a Bedrock agent handler.
func NewHandler(dispatcher *dispatch.Manager) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// Start runs the Lambda runtime loop. It does not return.
func (h *Handler) Start() {
	lambda.Start(h.HandleRequest)
}

// HandleRequest serves one action-group invocation. Tool failures are
// reported inside the response envelope with a mapped HTTP status; the
// returned error is reserved for malformed events.
func (h *Handler) HandleRequest(ctx context.Context, event events.BedrockAgentRequest) (events.BedrockAgentResponse, error) {
	toolName := toolNameFromPath(event.APIPath)
	if toolName == "" {
		return events.BedrockAgentResponse{}, fmt.Errorf("event has no API path")
	}

	args := argumentsFromEvent(event)
	logger.Debugf("Bedrock agent invoked tool %s (session %s)", toolName, event.SessionID)

	result, err := h.dispatcher.Dispatch(ctx, toolName, args)
	if err != nil {
		return h.errorResponse(event, err), nil
	}

	body, err := json.Marshal(result.Value)
	if err != nil {
		return h.errorResponse(event, fmt.Errorf("failed to encode result: %w", err)), nil
	}
	return response(event, 200, string(body)), nil
}

// errorResponse renders a dispatch failure in the action-group envelope,
// with the HTTP status derived from the error category.
func (h *Handler) errorResponse(event events.BedrockAgentRequest, err error) events.BedrockAgentResponse {
	payload := h.dispatcher.FormatError(err)

	status := 500
	if code, ok := payload["httpStatusCode"].(int); ok {
		status = code
	}

	body, marshalErr := json.Marshal(payload["body"])
	if marshalErr != nil {
		body = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return response(event, status, string(body))
}

func response(event events.BedrockAgentRequest, status int, body string) events.BedrockAgentResponse {
	return events.BedrockAgentResponse{
		MessageVersion: messageVersion,
		Response: events.Response{
			ActionGroup:    event.ActionGroup,
			APIPath:        event.APIPath,
			HTTPMethod:     event.HTTPMethod,
			HTTPStatusCode: status,
			ResponseBody: map[string]events.ResponseBody{
				"application/json": {Body: body},
			},
		},
		SessionAttributes:       event.SessionAttributes,
		PromptSessionAttributes: event.PromptSessionAttributes,
	}
}

// toolNameFromPath maps the action-group API path to a tool name. The
// OpenAPI schema names each path after its tool, so "/current_weather"
// resolves to "current_weather".
func toolNameFromPath(apiPath string) string {
	return strings.Trim(apiPath, "/")
}

// argumentsFromEvent flattens query parameters and request-body properties
// into one argument map. Body properties win on name collisions.
func argumentsFromEvent(event events.BedrockAgentRequest) map[string]any {
	args := make(map[string]any)
	for _, parameter := range event.Parameters {
		args[parameter.Name] = coerceValue(parameter.Type, parameter.Value)
	}
	for _, content := range event.RequestBody.Content {
		for _, property := range content.Properties {
			args[property.Name] = coerceValue(property.Type, property.Value)
		}
	}
	return args
}

// coerceValue converts a string-typed event value to the Go type matching
// its declared schema type. Unparseable values pass through as strings so
// schema validation reports them.
func coerceValue(declaredType, value string) any {
	switch declaredType {
	case "number":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case "integer":
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	case "boolean":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}
