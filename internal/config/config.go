package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// OpenWeather configuration. An empty key disables weather lookups.
	OpenWeatherAPIKey      string
	OpenWeatherGeocodeURL  string
	OpenWeatherForecastURL string
	GeocodeTimeout         time.Duration
	ForecastTimeout        time.Duration

	// LocationRequired selects the mandatory-location deployment profile.
	LocationRequired bool

	// CatalogPath overrides the embedded treatment catalog when set.
	CatalogPath string

	ModelServerURL string
	ModelTimeout   time.Duration
	MaxUploadBytes int64

	KafkaEnabled         bool
	KafkaBrokers         []string
	KafkaPredictionTopic string
	KafkaPublishTimeout  time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := parseTimeout("GEOCODE_TIMEOUT", "8s")
	if err != nil {
		return nil, err
	}
	forecastTimeout, err := parseTimeout("FORECAST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	modelTimeout, err := parseTimeout("MODEL_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	publishTimeout, err := parseTimeout("KAFKA_PUBLISH_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}

	locationRequired, err := parseBool("LOCATION_REQUIRED", false)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	maxUpload, err := strconv.ParseInt(sharedcfg.EnvOrDefault("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, errors.New("invalid MAX_UPLOAD_BYTES")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8000"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenWeatherAPIKey:      os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherGeocodeURL:  sharedcfg.EnvOrDefault("OPENWEATHER_GEOCODE_URL", "http://api.openweathermap.org/geo/1.0/direct"),
		OpenWeatherForecastURL: sharedcfg.EnvOrDefault("OPENWEATHER_FORECAST_URL", "https://api.openweathermap.org/data/2.5/forecast"),
		GeocodeTimeout:         geocodeTimeout,
		ForecastTimeout:        forecastTimeout,

		LocationRequired: locationRequired,
		CatalogPath:      os.Getenv("CATALOG_PATH"),

		ModelServerURL: os.Getenv("MODEL_SERVER_URL"),
		ModelTimeout:   modelTimeout,
		MaxUploadBytes: maxUpload,

		KafkaEnabled:         kafkaEnabled,
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaPredictionTopic: sharedcfg.EnvOrDefault("KAFKA_PREDICTION_TOPIC", "crop-predictions"),
		KafkaPublishTimeout:  publishTimeout,
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaPredictionTopic == "" {
			return nil, errors.New("KAFKA_PREDICTION_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// WeatherEnabled reports whether an OpenWeather API key is configured.
func (c *Config) WeatherEnabled() bool {
	return c.OpenWeatherAPIKey != ""
}

func parseTimeout(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, v)
	}
	return b, nil
}
