package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/crop-advisory-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/crop-advisory-service/internal/adapter/kafka"
	"github.com/couchcryptid/crop-advisory-service/internal/adapter/openweather"
	"github.com/couchcryptid/crop-advisory-service/internal/advisory"
	"github.com/couchcryptid/crop-advisory-service/internal/catalog"
	"github.com/couchcryptid/crop-advisory-service/internal/classify"
	"github.com/couchcryptid/crop-advisory-service/internal/config"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
	"github.com/couchcryptid/crop-advisory-service/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	treatments, err := loadCatalog(cfg)
	if err != nil {
		logger.Error("failed to load treatment catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("treatment catalog loaded", "treatments", treatments.Len(), "path", cfg.CatalogPath)

	weather := openweather.NewClient(openweather.Options{
		APIKey:          cfg.OpenWeatherAPIKey,
		GeocodeURL:      cfg.OpenWeatherGeocodeURL,
		ForecastURL:     cfg.OpenWeatherForecastURL,
		GeocodeTimeout:  cfg.GeocodeTimeout,
		ForecastTimeout: cfg.ForecastTimeout,
	}, metrics, logger)

	// Without a key place names cannot resolve; literal coordinates still do.
	var geocoder domain.Geocoder
	if cfg.WeatherEnabled() {
		geocoder = openweather.NewCachedGeocoder(weather, openweather.NewMemoryCache(), metrics)
		logger.Info("openweather enabled", "geocode_timeout", cfg.GeocodeTimeout, "forecast_timeout", cfg.ForecastTimeout)
	} else {
		logger.Warn("OPENWEATHER_API_KEY not set, weather advisories will report no data")
	}

	resolver := domain.NewLocationResolver(geocoder, logger)
	advisories := advisory.NewService(resolver, weather, treatments, cfg.LocationRequired, metrics, logger)

	classifier := classify.NewModelServerClassifier(cfg.ModelServerURL, cfg.ModelTimeout, logger)
	if !classifier.Available() {
		logger.Warn("MODEL_SERVER_URL not set, predictions will fail with model_unavailable")
	}

	var (
		publisher pipeline.EventPublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaPredictionTopic, logger)
		publisher = writer
		logger.Info("prediction events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaPredictionTopic, "publish_timeout", cfg.KafkaPublishTimeout)
	}

	p := pipeline.New(classifier, advisories, treatments, publisher, logger, metrics)
	p.SetPublishTimeout(cfg.KafkaPublishTimeout)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, cfg.MaxUploadBytes, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFile(cfg.CatalogPath)
	}
	return catalog.Default()
}
