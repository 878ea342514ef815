// Package openweather implements the geocode and forecast providers on top
// of the OpenWeather REST APIs.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
)

const (
	DefaultGeocodeURL  = "http://api.openweathermap.org/geo/1.0/direct"
	DefaultForecastURL = "https://api.openweathermap.org/data/2.5/forecast"

	endpointGeocode  = "geocode"
	endpointForecast = "forecast"

	maxErrorBody = 512
)

var errNoAPIKey = errors.New("openweather API key not configured")

// Options configures a Client. Empty URLs fall back to the public endpoints.
type Options struct {
	APIKey          string
	GeocodeURL      string
	ForecastURL     string
	GeocodeTimeout  time.Duration
	ForecastTimeout time.Duration
}

// Client implements domain.Geocoder and domain.ForecastFetcher against
// OpenWeather. Each endpoint has its own HTTP timeout and circuit breaker;
// calls are never retried.
type Client struct {
	apiKey      string
	geocodeURL  string
	forecastURL string

	geocodeHTTP  *http.Client
	forecastHTTP *http.Client

	geocodeBreaker  *gobreaker.CircuitBreaker
	forecastBreaker *gobreaker.CircuitBreaker

	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates an OpenWeather client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if opts.GeocodeURL == "" {
		opts.GeocodeURL = DefaultGeocodeURL
	}
	if opts.ForecastURL == "" {
		opts.ForecastURL = DefaultForecastURL
	}

	if opts.APIKey != "" {
		metrics.WeatherEnabled.Set(1)
	} else {
		metrics.WeatherEnabled.Set(0)
	}

	return &Client{
		apiKey:          opts.APIKey,
		geocodeURL:      opts.GeocodeURL,
		forecastURL:     opts.ForecastURL,
		geocodeHTTP:     &http.Client{Timeout: opts.GeocodeTimeout},
		forecastHTTP:    &http.Client{Timeout: opts.ForecastTimeout},
		geocodeBreaker:  newBreaker(endpointGeocode, logger),
		forecastBreaker: newBreaker(endpointForecast, logger),
		clock:           clockwork.NewRealClock(),
		metrics:         metrics,
		logger:          logger,
	}
}

// newBreaker opens after 5 consecutive transport or status failures and
// lets one trial request through after 30s. Zero-result geocodes do not
// count as failures, and neither do requests the caller cancelled.
func newBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         "openweather-" + name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func breakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Geocode returns the first match for query. Any failure, including a
// missing API key, is reported as domain.ErrNotFound.
func (c *Client) Geocode(ctx context.Context, query string) (domain.Coordinates, error) {
	if c.apiKey == "" {
		c.metrics.GeocodeRequests.WithLabelValues("skipped").Inc()
		return domain.Coordinates{}, fmt.Errorf("%w: %w", domain.ErrNotFound, errNoAPIKey)
	}

	params := url.Values{
		"q":     {query},
		"limit": {"1"},
		"appid": {c.apiKey},
	}

	out, err := c.geocodeBreaker.Execute(func() (interface{}, error) {
		var results []geocodeResult
		if err := c.getJSON(ctx, c.geocodeHTTP, endpointGeocode, c.geocodeURL+"?"+params.Encode(), &results); err != nil {
			return nil, err
		}
		return results, nil
	})
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Coordinates{}, fmt.Errorf("%w: geocode %q: %w", domain.ErrNotFound, query, err)
	}

	results := out.([]geocodeResult)
	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		return domain.Coordinates{}, fmt.Errorf("%w: no geocode results for %q", domain.ErrNotFound, query)
	}

	first := results[0]
	if first.Lat == nil || first.Lon == nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Coordinates{}, fmt.Errorf("%w: geocode result for %q has no coordinates", domain.ErrNotFound, query)
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	return domain.Coordinates{Lat: *first.Lat, Lon: *first.Lon}, nil
}

// Fetch returns the 3-hourly forecast for coords. Any failure, including a
// missing API key, is reported as domain.ErrUnavailable.
func (c *Client) Fetch(ctx context.Context, coords domain.Coordinates) (domain.ForecastSeries, error) {
	if c.apiKey == "" {
		c.metrics.ForecastRequests.WithLabelValues("skipped").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrUnavailable, errNoAPIKey)
	}

	params := url.Values{
		"lat":   {strconv.FormatFloat(coords.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(coords.Lon, 'f', -1, 64)},
		"units": {"metric"},
		"appid": {c.apiKey},
	}

	out, err := c.forecastBreaker.Execute(func() (interface{}, error) {
		var resp forecastResponse
		if err := c.getJSON(ctx, c.forecastHTTP, endpointForecast, c.forecastURL+"?"+params.Encode(), &resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: forecast: %w", domain.ErrUnavailable, err)
	}

	c.metrics.ForecastRequests.WithLabelValues("success").Inc()
	return out.(forecastResponse).series(), nil
}

func (c *Client) getJSON(ctx context.Context, httpClient *http.Client, endpoint, fullURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := c.clock.Now()
	resp, err := httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// OpenWeather API response types.

type geocodeResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	Rain *struct {
		ThreeHour *float64 `json:"3h"`
	} `json:"rain"`
	POP  *float64 `json:"pop"`
	Main *struct {
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
}

func (r forecastResponse) series() domain.ForecastSeries {
	series := make(domain.ForecastSeries, 0, len(r.List))
	for _, item := range r.List {
		var e domain.ForecastEntry
		if item.Rain != nil {
			e.Rain3h = item.Rain.ThreeHour
		}
		e.PrecipProbability = item.POP
		if item.Main != nil {
			e.HumidityPct = item.Main.Humidity
		}
		series = append(series, e)
	}
	return series
}
