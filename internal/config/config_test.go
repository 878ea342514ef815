package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "ow-test-key"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.OpenWeatherAPIKey)
	assert.False(t, cfg.WeatherEnabled())
	assert.Equal(t, "http://api.openweathermap.org/geo/1.0/direct", cfg.OpenWeatherGeocodeURL)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/forecast", cfg.OpenWeatherForecastURL)
	assert.Equal(t, 8*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 10*time.Second, cfg.ForecastTimeout)
	assert.False(t, cfg.LocationRequired)
	assert.Empty(t, cfg.CatalogPath)
	assert.Empty(t, cfg.ModelServerURL)
	assert.Equal(t, 15*time.Second, cfg.ModelTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "crop-predictions", cfg.KafkaPredictionTopic)
	assert.Equal(t, 2*time.Second, cfg.KafkaPublishTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("OPENWEATHER_API_KEY", testAPIKey)
	t.Setenv("OPENWEATHER_GEOCODE_URL", "http://geo.local/direct")
	t.Setenv("OPENWEATHER_FORECAST_URL", "http://wx.local/forecast")
	t.Setenv("GEOCODE_TIMEOUT", "2s")
	t.Setenv("FORECAST_TIMEOUT", "3s")
	t.Setenv("LOCATION_REQUIRED", "true")
	t.Setenv("CATALOG_PATH", "/etc/agriaid/treatments.yaml")
	t.Setenv("MODEL_SERVER_URL", "http://tf-serving:8501")
	t.Setenv("MODEL_TIMEOUT", "5s")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_PREDICTION_TOPIC", "custom-predictions")
	t.Setenv("KAFKA_PUBLISH_TIMEOUT", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, testAPIKey, cfg.OpenWeatherAPIKey)
	assert.True(t, cfg.WeatherEnabled())
	assert.Equal(t, "http://geo.local/direct", cfg.OpenWeatherGeocodeURL)
	assert.Equal(t, "http://wx.local/forecast", cfg.OpenWeatherForecastURL)
	assert.Equal(t, 2*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 3*time.Second, cfg.ForecastTimeout)
	assert.True(t, cfg.LocationRequired)
	assert.Equal(t, "/etc/agriaid/treatments.yaml", cfg.CatalogPath)
	assert.Equal(t, "http://tf-serving:8501", cfg.ModelServerURL)
	assert.Equal(t, 5*time.Second, cfg.ModelTimeout)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-predictions", cfg.KafkaPredictionTopic)
	assert.Equal(t, 500*time.Millisecond, cfg.KafkaPublishTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidTimeouts(t *testing.T) {
	for _, key := range []string{"GEOCODE_TIMEOUT", "FORECAST_TIMEOUT", "MODEL_TIMEOUT", "KAFKA_PUBLISH_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "bad")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_NegativeGeocodeTimeout(t *testing.T) {
	t.Setenv("GEOCODE_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODE_TIMEOUT")
}

func TestLoad_InvalidLocationRequired(t *testing.T) {
	t.Setenv("LOCATION_REQUIRED", "sometimes")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCATION_REQUIRED")
}

func TestLoad_InvalidMaxUpload(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES")
}
