package bedrock

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/config"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/dispatch"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/protocol"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/resilience"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/tools"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(&tools.Tool{
		Name: "current_weather",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"latitude":  map[string]any{"type": "number"},
				"longitude": map[string]any{"type": "number"},
			},
			"required": []string{"latitude", "longitude"},
		},
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			return map[string]any{
				"latitude":  args["latitude"],
				"summary":   "Sunny",
				"unit_code": "F",
			}, nil
		},
	}))
	require.NoError(t, registry.Register(&tools.Tool{
		Name: "weather_alerts",
		Handler: func(context.Context, map[string]any) (any, error) {
			return nil, errors.NewThrottlingError("rate exceeded", nil)
		},
	}))

	cfg := config.Default().Resilience
	cfg.Retry.InitialInterval = time.Millisecond
	dispatcher := dispatch.NewManager(registry, resilience.NewManager(cfg), protocol.ModeBedrockAgent, nil)
	return NewHandler(dispatcher)
}

func weatherEvent() events.BedrockAgentRequest {
	return events.BedrockAgentRequest{
		MessageVersion: "1.0",
		SessionID:      "session-1",
		ActionGroup:    "weather",
		APIPath:        "/current_weather",
		HTTPMethod:     "GET",
		Parameters: []events.Parameter{
			{Name: "latitude", Type: "number", Value: "47.6062"},
			{Name: "longitude", Type: "number", Value: "-122.3321"},
		},
	}
}

func TestHandleRequestSuccess(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	resp, err := h.HandleRequest(context.Background(), weatherEvent())
	require.NoError(t, err)

	assert.Equal(t, "1.0", resp.MessageVersion)
	assert.Equal(t, 200, resp.Response.HTTPStatusCode)
	assert.Equal(t, "weather", resp.Response.ActionGroup)
	assert.Equal(t, "/current_weather", resp.Response.APIPath)

	body := resp.Response.ResponseBody["application/json"].Body
	assert.Contains(t, body, `"summary":"Sunny"`)
	assert.Contains(t, body, `"latitude":47.6062`)
}

func TestHandleRequestValidationFailure(t *testing.T) {
	t.Parallel()

	event := weatherEvent()
	event.Parameters = event.Parameters[:1] // drop longitude

	h := newTestHandler(t)
	resp, err := h.HandleRequest(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 400, resp.Response.HTTPStatusCode)
	assert.Contains(t, resp.Response.ResponseBody["application/json"].Body, `"category":"validation"`)
}

func TestHandleRequestUnknownTool(t *testing.T) {
	t.Parallel()

	event := weatherEvent()
	event.APIPath = "/no_such_tool"

	h := newTestHandler(t)
	resp, err := h.HandleRequest(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 404, resp.Response.HTTPStatusCode)
}

func TestHandleRequestThrottledTool(t *testing.T) {
	t.Parallel()

	event := weatherEvent()
	event.APIPath = "/weather_alerts"
	event.Parameters = nil

	h := newTestHandler(t)
	resp, err := h.HandleRequest(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 429, resp.Response.HTTPStatusCode)
}

func TestHandleRequestMissingAPIPath(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	_, err := h.HandleRequest(context.Background(), events.BedrockAgentRequest{})
	assert.Error(t, err)
}

func TestArgumentsFromEvent(t *testing.T) {
	t.Parallel()

	event := events.BedrockAgentRequest{
		Parameters: []events.Parameter{
			{Name: "latitude", Type: "number", Value: "47.6"},
			{Name: "hourly", Type: "boolean", Value: "true"},
			{Name: "max_results", Type: "integer", Value: "3"},
			{Name: "query", Type: "string", Value: "pike place"},
		},
		RequestBody: events.RequestBody{
			Content: map[string]events.Content{
				"application/json": {
					Properties: []events.Property{
						{Name: "query", Type: "string", Value: "space needle"},
					},
				},
			},
		},
	}

	args := argumentsFromEvent(event)
	assert.Equal(t, 47.6, args["latitude"])
	assert.Equal(t, true, args["hourly"])
	assert.Equal(t, int64(3), args["max_results"])
	assert.Equal(t, "space needle", args["query"], "body properties win over parameters")
}

func TestCoerceValueUnparseable(t *testing.T) {
	t.Parallel()

	// Bad numbers stay strings so schema validation surfaces them
	assert.Equal(t, "abc", coerceValue("number", "abc"))
	assert.Equal(t, "maybe", coerceValue("boolean", "maybe"))
}
