// Command advise prints the weather advisory for one crop disease at one
// location, using the same pipeline as the HTTP service.
//
// Usage:
//
//	advise --crop potato --disease "Early blight" --location Pune
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/couchcryptid/crop-advisory-service/internal/adapter/openweather"
	"github.com/couchcryptid/crop-advisory-service/internal/advisory"
	"github.com/couchcryptid/crop-advisory-service/internal/catalog"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

type cli struct {
	Crop     string `help:"Crop type (potato, tomato, pepper, rice)." required:"" validate:"oneof=potato tomato pepper rice"`
	Disease  string `help:"Predicted class label or disease key, e.g. \"Early blight\"." required:"" validate:"required,max=128"`
	Location string `help:"Place name or \"lat,lon\" pair." validate:"max=256"`

	APIKey          string        `name:"api-key" env:"OPENWEATHER_API_KEY" help:"OpenWeather API key."`
	GeocodeURL      string        `name:"geocode-url" env:"OPENWEATHER_GEOCODE_URL" default:"http://api.openweathermap.org/geo/1.0/direct" help:"Geocoding endpoint."`
	ForecastURL     string        `name:"forecast-url" env:"OPENWEATHER_FORECAST_URL" default:"https://api.openweathermap.org/data/2.5/forecast" help:"Forecast endpoint."`
	GeocodeTimeout  time.Duration `name:"geocode-timeout" env:"GEOCODE_TIMEOUT" default:"8s" help:"Geocoding request timeout."`
	ForecastTimeout time.Duration `name:"forecast-timeout" env:"FORECAST_TIMEOUT" default:"10s" help:"Forecast request timeout."`
	Catalog         string        `env:"CATALOG_PATH" help:"Treatment catalog override."`
	RequireLocation bool          `name:"require-location" env:"LOCATION_REQUIRED" help:"Fail instead of skipping when the location is missing or unresolved."`
	LogLevel        string        `name:"log-level" env:"LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"Log level."`
}

func main() {
	_ = godotenv.Load()

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("advise"),
		kong.Description("Print the weather-conditioned treatment advisory for a crop disease."),
		kong.UsageOnError(),
	)

	if err := run(context.Background(), c); err != nil {
		kctx.Fatalf("%v", err)
	}
}

func run(ctx context.Context, c cli) error {
	c.Crop = strings.ToLower(strings.TrimSpace(c.Crop))
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	crop, err := domain.ParseCrop(c.Crop)
	if err != nil {
		return err
	}

	treatments, err := catalog.Default()
	if c.Catalog != "" {
		treatments, err = catalog.LoadFile(c.Catalog)
	}
	if err != nil {
		return err
	}

	logger := observability.NewLogger(os.Stderr, c.LogLevel, "text")
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())

	weather := openweather.NewClient(openweather.Options{
		APIKey:          c.APIKey,
		GeocodeURL:      c.GeocodeURL,
		ForecastURL:     c.ForecastURL,
		GeocodeTimeout:  c.GeocodeTimeout,
		ForecastTimeout: c.ForecastTimeout,
	}, metrics, logger)

	var geocoder domain.Geocoder
	if c.APIKey != "" {
		geocoder = weather
	}
	resolver := domain.NewLocationResolver(geocoder, logger)
	svc := advisory.NewService(resolver, weather, treatments, c.RequireLocation, metrics, logger)

	key := domain.DiseaseKey(c.Disease)
	adv, err := svc.Build(ctx, key, crop, c.Location)
	if err != nil {
		return err
	}

	treatment, ok := treatments.Lookup(crop, key)
	if !ok {
		treatment = catalog.EmptyTreatment()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		CropType        domain.Crop       `json:"crop_type"`
		Disease         string            `json:"disease"`
		TreatmentInfo   catalog.Treatment `json:"treatment_info"`
		WeatherForecast *domain.Advisory  `json:"weather_forecast"`
	}{crop, key, treatment, adv})
}
