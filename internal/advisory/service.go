// Package advisory composes location resolution, forecast aggregation, the
// generic policy and the disease override into a single weather advisory.
package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
)

// LocationResolver maps free-form location input to coordinates.
type LocationResolver interface {
	Resolve(ctx context.Context, input string) (domain.Coordinates, error)
}

// ThresholdSource looks up per-disease weather rules.
type ThresholdSource interface {
	Thresholds(crop domain.Crop, diseaseKey string) domain.WeatherThresholds
}

// Service builds advisories. In the optional-location profile every
// resolution or forecast failure degrades to a nil or no-data advisory; in
// the required profile location problems are returned to the caller.
type Service struct {
	resolver         LocationResolver
	forecasts        domain.ForecastFetcher
	thresholds       ThresholdSource
	locationRequired bool
	metrics          *observability.Metrics
	logger           *slog.Logger
}

// NewService creates an advisory service.
func NewService(
	resolver LocationResolver,
	forecasts domain.ForecastFetcher,
	thresholds ThresholdSource,
	locationRequired bool,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		resolver:         resolver,
		forecasts:        forecasts,
		thresholds:       thresholds,
		locationRequired: locationRequired,
		metrics:          metrics,
		logger:           logger,
	}
}

// LocationRequired reports which deployment profile the service runs in.
func (s *Service) LocationRequired() bool {
	return s.locationRequired
}

// Build returns the advisory for a disease of a crop at location, with
// display rounding applied. A nil advisory and nil error means no location
// was given or it could not be resolved in the optional profile.
func (s *Service) Build(ctx context.Context, diseaseKey string, crop domain.Crop, location string) (*domain.Advisory, error) {
	if strings.TrimSpace(location) == "" {
		if s.locationRequired {
			return nil, domain.ErrLocationRequired
		}
		return nil, nil
	}

	coords, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		if s.locationRequired {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		s.logger.Warn("location unresolved, skipping advisory", "location", location, "error", err)
		return nil, nil
	}

	series, err := s.forecasts.Fetch(ctx, coords)
	if err != nil {
		s.logger.Warn("forecast unavailable", "lat", coords.Lat, "lon", coords.Lon, "error", err)
		series = nil
	}

	agg := domain.Aggregate(series, domain.AdvisoryDays)
	adv := domain.NewAdvisory(agg, domain.Recommend(agg, domain.AdvisoryDays), coords)
	adv = domain.ApplyDiseaseOverride(adv, s.thresholds.Thresholds(crop, diseaseKey))

	s.metrics.AdvisoryDecisions.WithLabelValues(string(adv.Decision)).Inc()
	s.logger.Debug("advisory built",
		"crop", crop,
		"disease", diseaseKey,
		"decision", adv.Decision,
		"entries", len(series),
	)

	out := adv.Rounded()
	return &out, nil
}
