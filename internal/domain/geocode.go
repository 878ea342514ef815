package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LocationResolver turns free-form location input into coordinates.
// Literal "lat,lon" pairs are parsed in place; everything else goes to the
// geocoder, which is expected to be cached.
type LocationResolver struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewLocationResolver creates a resolver. Pass a nil geocoder when no
// provider credential is configured; place names then resolve to ErrNotFound.
func NewLocationResolver(geocoder Geocoder, logger *slog.Logger) *LocationResolver {
	return &LocationResolver{geocoder: geocoder, logger: logger}
}

// Resolve maps input to coordinates. Failures are ErrNotFound or
// ErrInvalidInput and are non-fatal to the pipeline.
func (r *LocationResolver) Resolve(ctx context.Context, input string) (Coordinates, error) {
	if strings.TrimSpace(input) == "" {
		return Coordinates{}, fmt.Errorf("%w: empty location", ErrNotFound)
	}

	coords, isPair, err := ParseCoordinates(input)
	if isPair {
		return coords, err
	}

	if r.geocoder == nil {
		return Coordinates{}, fmt.Errorf("%w: geocoding not configured", ErrNotFound)
	}

	coords, err = r.geocoder.Geocode(ctx, input)
	if err != nil {
		r.logger.Warn("geocode failed", "location", input, "error", err)
		return Coordinates{}, err
	}
	return coords, nil
}
