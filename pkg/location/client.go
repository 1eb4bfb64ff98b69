// Package location provides geocoding via the Amazon Location Service
// geo-places API.
package location

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/geoplaces"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/config"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
)

const defaultMaxResults = 5

// PlacesAPI defines the interface for geo-places operations, enabling mock
// injection for testing.
type PlacesAPI interface {
	SearchText(
		ctx context.Context,
		params *geoplaces.SearchTextInput,
		optFns ...func(*geoplaces.Options),
	) (*geoplaces.SearchTextOutput, error)

	ReverseGeocode(
		ctx context.Context,
		params *geoplaces.ReverseGeocodeInput,
		optFns ...func(*geoplaces.Options),
	) (*geoplaces.ReverseGeocodeOutput, error)
}

// Place is a geocoding result.
type Place struct {
	// Label is the full formatted address or place name.
	Label string `json:"label"`

	// Municipality, Region, and Country locate the place administratively.
	Municipality string `json:"municipality,omitempty"`
	Region       string `json:"region,omitempty"`
	Country      string `json:"country,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client wraps the geo-places API behind the Place result type.
type Client struct {
	api PlacesAPI
}

// NewClient creates a Client with a regional geo-places client using the
// default AWS credential chain.
func NewClient(ctx context.Context, cfg config.LocationConfig) (*Client, error) {
	if cfg.Region == "" {
		return nil, errors.NewValidationError("AWS region is required for the location client", nil)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{api: geoplaces.NewFromConfig(awsCfg)}, nil
}

// NewClientWithAPI creates a Client with an injected API implementation.
// Intended for tests.
func NewClientWithAPI(api PlacesAPI) *Client {
	return &Client{api: api}
}

// SearchText geocodes a free-text query into candidate places.
func (c *Client) SearchText(ctx context.Context, query string, maxResults int32) ([]Place, error) {
	if query == "" {
		return nil, errors.NewValidationError("search query must not be empty", nil)
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	out, err := c.api.SearchText(ctx, &geoplaces.SearchTextInput{
		QueryText:  &query,
		MaxResults: &maxResults,
	})
	if err != nil {
		return nil, errors.Classify(fmt.Errorf("place search for %q failed: %w", query, err))
	}

	places := make([]Place, 0, len(out.ResultItems))
	for _, item := range out.ResultItems {
		place := Place{
			Label: deref(item.Title),
		}
		if item.Address != nil {
			if place.Label == "" {
				place.Label = deref(item.Address.Label)
			}
			place.Municipality = deref(item.Address.Locality)
			if item.Address.Region != nil {
				place.Region = deref(item.Address.Region.Name)
			}
			if item.Address.Country != nil {
				place.Country = deref(item.Address.Country.Name)
			}
		}
		// Position is [longitude, latitude] per GeoJSON convention.
		if len(item.Position) == 2 {
			place.Longitude = item.Position[0]
			place.Latitude = item.Position[1]
		}
		places = append(places, place)
	}

	logger.Debugf("Place search for %q returned %d results", query, len(places))
	return places, nil
}

// ReverseGeocode resolves a coordinate to the nearest address or place.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, errors.NewValidationError(
			fmt.Sprintf("coordinate %f,%f out of range", lat, lon), nil)
	}

	one := int32(1)
	out, err := c.api.ReverseGeocode(ctx, &geoplaces.ReverseGeocodeInput{
		// QueryPosition is [longitude, latitude] per GeoJSON convention.
		QueryPosition: []float64{lon, lat},
		MaxResults:    &one,
	})
	if err != nil {
		return nil, errors.Classify(fmt.Errorf("reverse geocode of %f,%f failed: %w", lat, lon, err))
	}

	if len(out.ResultItems) == 0 {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("no place found near %f,%f", lat, lon), nil)
	}

	item := out.ResultItems[0]
	place := &Place{
		Label:     deref(item.Title),
		Latitude:  lat,
		Longitude: lon,
	}
	if item.Address != nil {
		if place.Label == "" {
			place.Label = deref(item.Address.Label)
		}
		place.Municipality = deref(item.Address.Locality)
		if item.Address.Region != nil {
			place.Region = deref(item.Address.Region.Name)
		}
		if item.Address.Country != nil {
			place.Country = deref(item.Address.Country.Name)
		}
	}
	if len(item.Position) == 2 {
		place.Longitude = item.Position[0]
		place.Latitude = item.Position[1]
	}

	return place, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
