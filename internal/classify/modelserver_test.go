package classify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClassifier(url string) *ModelServerClassifier {
	return NewModelServerClassifier(url, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestModelServer_Classify_Success(t *testing.T) {
	img := []byte("leaf-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/potato:predict", r.URL.Path)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Instances, 1)
		assert.Equal(t, base64.StdEncoding.EncodeToString(img), req.Instances[0].B64)

		_, _ = w.Write([]byte(`{"predictions":[[0.91,0.06,0.03]]}`))
	}))
	defer srv.Close()

	got, err := testClassifier(srv.URL+"/").Classify(context.Background(), img, domain.CropPotato)
	require.NoError(t, err)
	assert.Equal(t, domain.Prediction{Label: "Early blight", Confidence: 0.91}, got)
}

func TestModelServer_Classify_ArgmaxPicksLast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[[0.2,0.8]]}`))
	}))
	defer srv.Close()

	got, err := testClassifier(srv.URL).Classify(context.Background(), []byte("x"), domain.CropPepper)
	require.NoError(t, err)
	assert.Equal(t, "Pepper__bell_healthy", got.Label)
	assert.Equal(t, 0.8, got.Confidence)
}

func TestModelServer_NotConfigured(t *testing.T) {
	c := testClassifier("")
	assert.False(t, c.Available())

	_, err := c.Classify(context.Background(), []byte("x"), domain.CropRice)
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestModelServer_UnknownCrop(t *testing.T) {
	_, err := testClassifier("http://unused").Classify(context.Background(), []byte("x"), domain.Crop("wheat"))
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestModelServer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "model missing", status: http.StatusNotFound, body: `{"error":"Servable not found"}`, wantErr: domain.ErrModelUnavailable},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, wantErr: domain.ErrPredictionFailed},
		{name: "malformed", status: http.StatusOK, body: `{"predictions":`, wantErr: domain.ErrPredictionFailed},
		{name: "no rows", status: http.StatusOK, body: `{"predictions":[]}`, wantErr: domain.ErrPredictionFailed},
		{name: "wrong width", status: http.StatusOK, body: `{"predictions":[[0.5,0.5]]}`, wantErr: domain.ErrPredictionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testClassifier(srv.URL).Classify(context.Background(), []byte("x"), domain.CropPotato)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestModelServer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClassifier(url).Classify(context.Background(), []byte("x"), domain.CropTomato)
	require.ErrorIs(t, err, domain.ErrPredictionFailed)
}

func TestLabels_CoverEveryCrop(t *testing.T) {
	for _, crop := range domain.Crops {
		assert.NotEmpty(t, Labels[crop], crop)
	}
	assert.Len(t, Labels[domain.CropTomato], 10)
	assert.Len(t, Labels[domain.CropRice], 10)
}

func TestArgmax(t *testing.T) {
	idx, v := argmax([]float64{0.1, 0.7, 0.2})
	assert.Equal(t, 1, idx)
	assert.Equal(t, 0.7, v)

	idx, _ = argmax([]float64{0.5, 0.5})
	assert.Equal(t, 0, idx, "ties keep the first label")
}
