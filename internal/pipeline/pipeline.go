// Package pipeline runs a prediction end to end: classify the leaf image,
// look up the treatment, attach the weather advisory and publish the event.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/catalog"
	"github.com/couchcryptid/crop-advisory-service/internal/classify"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// AdvisoryBuilder produces the weather advisory for a prediction.
type AdvisoryBuilder interface {
	Build(ctx context.Context, diseaseKey string, crop domain.Crop, location string) (*domain.Advisory, error)
	LocationRequired() bool
}

// TreatmentCatalog looks up remedies by crop and disease key.
type TreatmentCatalog interface {
	Lookup(crop domain.Crop, diseaseKey string) (catalog.Treatment, bool)
	FindByDisease(diseaseKey string) (domain.Crop, catalog.Treatment, bool)
	Loaded() bool
}

// DefaultPublishTimeout bounds a single event publish when no other
// timeout is set.
const DefaultPublishTimeout = 2 * time.Second

// EventPublisher sends prediction events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.PredictionEvent) error
}

// availability is implemented by classifiers that can report whether any
// model is reachable.
type availability interface {
	Available() bool
}

// Request is one prediction request. CropType is raw user input.
type Request struct {
	Image    []byte
	CropType string
	Location string
}

// Result is the prediction response.
type Result struct {
	CropType        domain.Crop       `json:"crop_type"`
	PredictedClass  string            `json:"predicted_class"`
	Confidence      float64           `json:"confidence"`
	TreatmentInfo   catalog.Treatment `json:"treatment_info"`
	WeatherForecast *domain.Advisory  `json:"weather_forecast"`
}

// Pipeline orchestrates classification, treatment lookup, advisory and
// event publishing.
type Pipeline struct {
	classifier classify.Classifier
	advisory   AdvisoryBuilder
	catalog    TreatmentCatalog
	publisher  EventPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	served     atomic.Bool

	publishTimeout time.Duration
}

// New creates a Pipeline. Pass a nil publisher to disable event publishing.
func New(
	classifier classify.Classifier,
	advisory AdvisoryBuilder,
	treatments TreatmentCatalog,
	publisher EventPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		advisory:   advisory,
		catalog:    treatments,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),

		publishTimeout: DefaultPublishTimeout,
	}
}

// SetPublishTimeout changes the deadline applied to each event publish.
// Non-positive values are ignored.
func (p *Pipeline) SetPublishTimeout(d time.Duration) {
	if d > 0 {
		p.publishTimeout = d
	}
}

// CheckReadiness returns nil once the catalog is loaded and a classifier
// model server is configured.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.catalog == nil || !p.catalog.Loaded() {
		return errors.New("treatment catalog not loaded")
	}
	if a, ok := p.classifier.(availability); ok && !a.Available() {
		return errors.New("no classifier model server configured")
	}
	return nil
}

// Served reports whether at least one prediction has completed.
func (p *Pipeline) Served() bool {
	return p.served.Load()
}

// Predict runs the full prediction flow. Location problems only fail the
// request when the advisory service requires a location.
func (p *Pipeline) Predict(ctx context.Context, req Request) (Result, error) {
	start := p.clock.Now()

	crop, err := domain.ParseCrop(req.CropType)
	if err != nil {
		return Result{}, err
	}

	res, err := p.predict(ctx, crop, req)
	if err != nil {
		p.metrics.Predictions.WithLabelValues(string(crop), "error").Inc()
		return Result{}, err
	}

	p.metrics.Predictions.WithLabelValues(string(crop), "success").Inc()
	p.metrics.PredictDuration.Observe(p.clock.Since(start).Seconds())
	p.served.Store(true)
	return res, nil
}

func (p *Pipeline) predict(ctx context.Context, crop domain.Crop, req Request) (Result, error) {
	if p.advisory.LocationRequired() && strings.TrimSpace(req.Location) == "" {
		return Result{}, domain.ErrLocationRequired
	}

	if _, err := classify.DetectFormat(req.Image); err != nil {
		return Result{}, err
	}

	pred, err := p.classifier.Classify(ctx, req.Image, crop)
	if err != nil {
		p.logger.Warn("classification failed", "crop", crop, "error", err)
		return Result{}, fmt.Errorf("classify %s: %w", crop, err)
	}

	key := domain.DiseaseKey(pred.Label)
	treatment, ok := p.catalog.Lookup(crop, key)
	if !ok {
		p.logger.Info("no treatment for prediction", "crop", crop, "disease", key)
		treatment = catalog.EmptyTreatment()
	}

	adv, err := p.advisory.Build(ctx, key, crop, req.Location)
	if err != nil {
		return Result{}, fmt.Errorf("weather advisory: %w", err)
	}

	p.publish(ctx, domain.NewPredictionEvent(crop, req.Image, pred, strings.TrimSpace(req.Location), adv))

	return Result{
		CropType:        crop,
		PredictedClass:  pred.Label,
		Confidence:      pred.Confidence,
		TreatmentInfo:   treatment,
		WeatherForecast: adv,
	}, nil
}

// publish is best-effort: a broker outage never fails a prediction, and
// never holds it for longer than the publish timeout.
func (p *Pipeline) publish(ctx context.Context, event domain.PredictionEvent) {
	if p.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish prediction event failed", "id", event.ID, "error", err)
		return
	}
	p.metrics.EventsPublished.Inc()
}

// Treatment finds the treatment for a predicted class across crops, in
// catalog order. The class is normalized like a classifier label.
func (p *Pipeline) Treatment(predictedClass string) (domain.Crop, catalog.Treatment, error) {
	key := domain.DiseaseKey(predictedClass)
	crop, t, ok := p.catalog.FindByDisease(key)
	if !ok {
		return "", catalog.Treatment{}, fmt.Errorf("treatment for %q: %w", key, ErrTreatmentNotFound)
	}
	return crop, t, nil
}

// ErrTreatmentNotFound is returned by Treatment when no crop lists the class.
var ErrTreatmentNotFound = errors.New("treatment not found")
