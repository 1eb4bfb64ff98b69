package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/location"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/weather"
)

// WeatherAPI is the weather client surface the built-in tools need.
type WeatherAPI interface {
	Forecast(ctx context.Context, lat, lon float64) ([]weather.Period, error)
	HourlyForecast(ctx context.Context, lat, lon float64) ([]weather.Period, error)
	Alerts(ctx context.Context, lat, lon float64) ([]weather.Alert, error)
}

// GeocodingAPI is the location client surface the built-in tools need.
type GeocodingAPI interface {
	SearchText(ctx context.Context, query string, maxResults int32) ([]location.Place, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (*location.Place, error)
}

// coordinateProperties is shared by every tool that takes a point.
func coordinateProperties() map[string]any {
	return map[string]any{
		"latitude": map[string]any{
			"type":        "number",
			"description": "Latitude in decimal degrees",
			"minimum":     -90,
			"maximum":     90,
		},
		"longitude": map[string]any{
			"type":        "number",
			"description": "Longitude in decimal degrees",
			"minimum":     -180,
			"maximum":     180,
		},
	}
}

// RegisterBuiltins registers the weather and location tools.
// The geocoding client may be nil (e.g. no AWS credentials available), in
// which case the location tools are skipped.
func RegisterBuiltins(reg *Registry, weatherAPI WeatherAPI, geoAPI GeocodingAPI) error {
	builtins := []*Tool{
		currentWeatherTool(weatherAPI),
		weatherForecastTool(weatherAPI),
		weatherAlertsTool(weatherAPI),
		currentTimeTool(),
	}
	if geoAPI != nil {
		builtins = append(builtins, searchPlacesTool(geoAPI), reverseGeocodeTool(geoAPI))
	}

	for _, tool := range builtins {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func currentWeatherTool(api WeatherAPI) *Tool {
	return &Tool{
		Name:        "current_weather",
		Description: "Get the current weather conditions for a coordinate",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": coordinateProperties(),
			"required":   []string{"latitude", "longitude"},
		},
		Alternative: "weather_forecast",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			lat, lon, err := pointArgs(args)
			if err != nil {
				return nil, err
			}

			periods, err := api.Forecast(ctx, lat, lon)
			if err != nil {
				return nil, err
			}
			if len(periods) == 0 {
				return nil, errors.NewNotFoundError("forecast returned no periods", nil)
			}

			now := periods[0]
			return map[string]any{
				"period":            now.Name,
				"temperature":       now.Temperature,
				"temperature_unit":  now.TemperatureUnit,
				"wind_speed":        now.WindSpeed,
				"wind_direction":    now.WindDirection,
				"short_forecast":    now.ShortForecast,
				"detailed_forecast": now.DetailedForecast,
			}, nil
		},
	}
}

func weatherForecastTool(api WeatherAPI) *Tool {
	properties := coordinateProperties()
	properties["hourly"] = map[string]any{
		"type":        "boolean",
		"description": "Return the hourly forecast instead of the daily one",
	}

	return &Tool{
		Name:        "weather_forecast",
		Description: "Get the weather forecast periods for a coordinate",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   []string{"latitude", "longitude"},
		},
		Alternative: "current_weather",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			lat, lon, err := pointArgs(args)
			if err != nil {
				return nil, err
			}

			hourly, _ := args["hourly"].(bool)

			var periods []weather.Period
			if hourly {
				periods, err = api.HourlyForecast(ctx, lat, lon)
			} else {
				periods, err = api.Forecast(ctx, lat, lon)
			}
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"hourly":  hourly,
				"periods": periods,
			}, nil
		},
	}
}

func weatherAlertsTool(api WeatherAPI) *Tool {
	return &Tool{
		Name:        "weather_alerts",
		Description: "Get active weather alerts for a coordinate",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": coordinateProperties(),
			"required":   []string{"latitude", "longitude"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			lat, lon, err := pointArgs(args)
			if err != nil {
				return nil, err
			}

			alerts, err := api.Alerts(ctx, lat, lon)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"count":  len(alerts),
				"alerts": alerts,
			}, nil
		},
	}
}

func searchPlacesTool(api GeocodingAPI) *Tool {
	return &Tool{
		Name:        "search_places",
		Description: "Search for places by free-text query and return coordinates",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text place query, e.g. 'Pike Place Market, Seattle'",
				},
				"max_results": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"minimum":     1,
					"maximum":     20,
				},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			query, ok := args["query"].(string)
			if !ok || query == "" {
				return nil, errors.NewValidationError("query must be a non-empty string", nil)
			}

			// JSON decodes numbers to float64; the Bedrock event path
			// delivers integers as int64.
			maxResults := int32(0)
			switch raw := args["max_results"].(type) {
			case float64:
				maxResults = int32(raw)
			case int64:
				maxResults = int32(raw)
			}

			places, err := api.SearchText(ctx, query, maxResults)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"count":  len(places),
				"places": places,
			}, nil
		},
	}
}

func reverseGeocodeTool(api GeocodingAPI) *Tool {
	return &Tool{
		Name:        "reverse_geocode",
		Description: "Resolve a coordinate to the nearest address or place",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": coordinateProperties(),
			"required":   []string{"latitude", "longitude"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			lat, lon, err := pointArgs(args)
			if err != nil {
				return nil, err
			}

			place, err := api.ReverseGeocode(ctx, lat, lon)
			if err != nil {
				return nil, err
			}
			return place, nil
		},
	}
}

func currentTimeTool() *Tool {
	return &Tool{
		Name:        "current_time",
		Description: "Get the current time, optionally in a specific IANA timezone",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"timezone": map[string]any{
					"type":        "string",
					"description": "IANA timezone name, e.g. 'America/Los_Angeles'. Defaults to UTC.",
				},
			},
		},
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			loc := time.UTC
			if tz, ok := args["timezone"].(string); ok && tz != "" {
				parsed, err := time.LoadLocation(tz)
				if err != nil {
					return nil, errors.NewValidationError(fmt.Sprintf("unknown timezone: %s", tz), err)
				}
				loc = parsed
			}

			now := time.Now().In(loc)
			return map[string]any{
				"timezone":   loc.String(),
				"time":       now.Format(time.RFC3339),
				"utc_offset": now.Format("-07:00"),
			}, nil
		},
	}
}

// pointArgs extracts and range-checks the latitude/longitude arguments.
// JSON numbers always decode to float64.
func pointArgs(args map[string]any) (float64, float64, error) {
	lat, ok := args["latitude"].(float64)
	if !ok {
		return 0, 0, errors.NewValidationError("latitude must be a number", nil)
	}
	lon, ok := args["longitude"].(float64)
	if !ok {
		return 0, 0, errors.NewValidationError("longitude must be a number", nil)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, errors.NewValidationError(fmt.Sprintf("latitude %f out of range", lat), nil)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, errors.NewValidationError(fmt.Sprintf("longitude %f out of range", lon), nil)
	}
	return lat, lon, nil
}
