package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
)

// ModelServerClassifier calls a TensorFlow-Serving style REST endpoint with
// one model per crop, named after the crop:
//
//	POST {baseURL}/v1/models/{crop}:predict
//	{"instances":[{"b64":"..."}]}
//
// The first prediction row holds one score per label.
type ModelServerClassifier struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewModelServerClassifier creates a classifier. An empty baseURL leaves
// every crop unavailable.
func NewModelServerClassifier(baseURL string, timeout time.Duration, logger *slog.Logger) *ModelServerClassifier {
	return &ModelServerClassifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Available reports whether a model server is configured.
func (c *ModelServerClassifier) Available() bool {
	return c.baseURL != ""
}

func (c *ModelServerClassifier) Classify(ctx context.Context, image []byte, crop domain.Crop) (domain.Prediction, error) {
	labels, ok := Labels[crop]
	if !ok {
		return domain.Prediction{}, fmt.Errorf("%w: no model for crop %q", domain.ErrModelUnavailable, crop)
	}
	if !c.Available() {
		return domain.Prediction{}, fmt.Errorf("%w: model server not configured", domain.ErrModelUnavailable)
	}

	body, err := json.Marshal(predictRequest{Instances: []instance{{B64: base64.StdEncoding.EncodeToString(image)}}})
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: encode request: %w", domain.ErrPredictionFailed, err)
	}

	u := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, crop)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: create request: %w", domain.ErrPredictionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: %s model request: %w", domain.ErrPredictionFailed, crop, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Prediction{}, fmt.Errorf("%w: %s model not loaded", domain.ErrModelUnavailable, crop)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Prediction{}, fmt.Errorf("%w: model server status %d: %s", domain.ErrPredictionFailed, resp.StatusCode, msg)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: decode response: %w", domain.ErrPredictionFailed, err)
	}
	if len(out.Predictions) == 0 {
		return domain.Prediction{}, fmt.Errorf("%w: %s model returned no predictions", domain.ErrPredictionFailed, crop)
	}
	if got := len(out.Predictions[0]); got != len(labels) {
		return domain.Prediction{}, fmt.Errorf("%w: %s model returned %d scores, want %d",
			domain.ErrPredictionFailed, crop, got, len(labels))
	}

	idx, score := argmax(out.Predictions[0])
	c.logger.Debug("model prediction", "crop", crop, "label", labels[idx], "confidence", score)
	return domain.Prediction{Label: labels[idx], Confidence: score}, nil
}

type predictRequest struct {
	Instances []instance `json:"instances"`
}

type instance struct {
	B64 string `json:"b64"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}
