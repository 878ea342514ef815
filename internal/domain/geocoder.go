package domain

import "context"

// Geocoder looks up coordinates for a place name with an external provider.
type Geocoder interface {
	// Geocode returns the provider's first match for query, or ErrNotFound.
	Geocode(ctx context.Context, query string) (Coordinates, error)
}

// ForecastFetcher retrieves a 3-hourly forecast for a coordinate pair.
type ForecastFetcher interface {
	// Fetch returns the forecast series, or ErrUnavailable.
	Fetch(ctx context.Context, coords Coordinates) (ForecastSeries, error)
}
