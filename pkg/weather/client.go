// Package weather provides a client for the National Weather Service API
// (api.weather.gov). Forecasts are a two-step lookup: a point is resolved to
// a forecast grid, then the grid's forecast endpoint is fetched.
package weather

import (
	"context"
	stderrors "errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/config"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/networking"
)

// Client is a National Weather Service API client.
type Client struct {
	baseURL    string
	httpClient networking.HTTPClient
	limiter    *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client. Intended for tests.
func WithHTTPClient(httpClient networking.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates an NWS client from the weather configuration.
func NewClient(cfg config.WeatherConfig, opts ...ClientOption) (*Client, error) {
	c := &Client{
		baseURL: cfg.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		httpClient, err := networking.NewHttpClientBuilder().
			WithUserAgent(cfg.UserAgent).
			WithTimeout(cfg.Timeout).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build NWS HTTP client: %w", err)
		}
		c.httpClient = httpClient
	}

	return c, nil
}

// Points resolves a coordinate to its NWS forecast grid.
// Points outside NWS coverage (oceans, non-US territory) return a
// not_found error.
func (c *Client) Points(ctx context.Context, lat, lon float64) (*GridPoint, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	result, err := fetchNWS[pointsResponse](ctx, c, requestURL)
	if err != nil {
		return nil, err
	}

	props := result.Properties
	if props.Forecast == "" {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("no forecast grid for point %.4f,%.4f", lat, lon), nil)
	}

	return &GridPoint{
		ForecastURL:       props.Forecast,
		ForecastHourlyURL: props.ForecastHourly,
		GridID:            props.GridID,
		City:              props.RelativeLocation.Properties.City,
		State:             props.RelativeLocation.Properties.State,
	}, nil
}

// Forecast returns the multi-day forecast periods for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]Period, error) {
	grid, err := c.Points(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return c.fetchPeriods(ctx, grid.ForecastURL)
}

// HourlyForecast returns the hourly forecast periods for a coordinate.
func (c *Client) HourlyForecast(ctx context.Context, lat, lon float64) ([]Period, error) {
	grid, err := c.Points(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if grid.ForecastHourlyURL == "" {
		return nil, errors.NewNotFoundError("no hourly forecast for grid "+grid.GridID, nil)
	}
	return c.fetchPeriods(ctx, grid.ForecastHourlyURL)
}

// Alerts returns the active weather alerts for a coordinate. An empty slice
// means no active alerts, which is the common case.
func (c *Client) Alerts(ctx context.Context, lat, lon float64) ([]Alert, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s/alerts/active?point=%.4f,%.4f", c.baseURL, lat, lon)
	result, err := fetchNWS[alertsResponse](ctx, c, requestURL)
	if err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0, len(result.Features))
	for _, feature := range result.Features {
		alerts = append(alerts, feature.Properties)
	}

	logger.Debugf("Fetched %d active alerts for %.4f,%.4f", len(alerts), lat, lon)
	return alerts, nil
}

func (c *Client) fetchPeriods(ctx context.Context, requestURL string) ([]Period, error) {
	result, err := fetchNWS[forecastResponse](ctx, c, requestURL)
	if err != nil {
		return nil, err
	}
	return result.Properties.Periods, nil
}

// fetchNWS rate-limits, fetches, and maps upstream HTTP failures into the
// error taxonomy.
func fetchNWS[T any](ctx context.Context, c *Client, requestURL string) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	result, err := networking.FetchJSON[T](ctx, c.httpClient, requestURL)
	if err != nil {
		var httpErr *networking.HTTPError
		if stderrors.As(err, &httpErr) {
			return nil, errors.FromHTTPStatus(httpErr.StatusCode,
				fmt.Sprintf("NWS request to %s failed", requestURL), err)
		}
		return nil, errors.NewNetworkError("NWS request failed", err)
	}
	return &result.Data, nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return errors.NewValidationError(fmt.Sprintf("latitude %f out of range [-90, 90]", lat), nil)
	}
	if lon < -180 || lon > 180 {
		return errors.NewValidationError(fmt.Sprintf("longitude %f out of range [-180, 180]", lon), nil)
	}
	return nil
}
