//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/adapter/kafka"
	"github.com/couchcryptid/crop-advisory-service/internal/adapter/openweather"
	"github.com/couchcryptid/crop-advisory-service/internal/advisory"
	"github.com/couchcryptid/crop-advisory-service/internal/catalog"
	"github.com/couchcryptid/crop-advisory-service/internal/classify"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
	"github.com/couchcryptid/crop-advisory-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testPredictionTopic = "test-crop-predictions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// fakeProviders serves the model server and the OpenWeather forecast from one test server.
func fakeProviders(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/models/potato:predict", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[[0.05,0.9,0.05]]}`))
	})
	mux.HandleFunc("GET /data/2.5/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"list":[{"rain":{"3h":1},"pop":0.2,"main":{"humidity":92}}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestPredictionPublishedToKafka runs a full prediction and reads the
// resulting event back from the topic.
func TestPredictionPublishedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testPredictionTopic)

	providers := fakeProviders(t)
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	cat, err := catalog.Default()
	require.NoError(t, err)

	weather := openweather.NewClient(openweather.Options{
		APIKey:          "test-key",
		GeocodeURL:      providers.URL + "/geo/1.0/direct",
		ForecastURL:     providers.URL + "/data/2.5/forecast",
		GeocodeTimeout:  5 * time.Second,
		ForecastTimeout: 5 * time.Second,
	}, metrics, logger)
	resolver := domain.NewLocationResolver(openweather.NewCachedGeocoder(weather, openweather.NewMemoryCache(), metrics), logger)
	advisories := advisory.NewService(resolver, weather, cat, false, metrics, logger)
	classifier := classify.NewModelServerClassifier(providers.URL, 5*time.Second, logger)

	writer := kafka.NewWriter([]string{broker}, testPredictionTopic, logger)
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(classifier, advisories, cat, writer, logger, metrics)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 8, 8))))

	res, err := p.Predict(ctx, pipeline.Request{Image: img.Bytes(), CropType: "potato", Location: "18.52,73.85"})
	require.NoError(t, err)
	assert.Equal(t, "Late blight", res.PredictedClass)
	require.NotNil(t, res.WeatherForecast)
	assert.Equal(t, domain.DecisionDiseaseHighHumidity, res.WeatherForecast.Decision)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testPredictionTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read from prediction topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "potato", headers["crop_type"])
	assert.NotEmpty(t, headers["predicted_at"])

	var event domain.PredictionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, string(msg.Key), event.ID)
	assert.Equal(t, "late_blight", event.DiseaseKey)
	assert.Equal(t, 0.9, event.Confidence)
	require.NotNil(t, event.Advisory)
	assert.Equal(t, 18.52, event.Advisory.Lat)
}
