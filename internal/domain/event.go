package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// PredictionEvent is published downstream after every successful prediction.
type PredictionEvent struct {
	ID             string    `json:"id"`
	CropType       Crop      `json:"crop_type"`
	PredictedClass string    `json:"predicted_class"`
	DiseaseKey     string    `json:"disease_key"`
	Confidence     float64   `json:"confidence"`
	Location       string    `json:"location,omitempty"`
	Advisory       *Advisory `json:"weather_forecast,omitempty"`
	PredictedAt    time.Time `json:"predicted_at"`
}

// NewPredictionEvent stamps an event with the package clock and a
// content-derived ID, so the same image and crop always map to the same key.
func NewPredictionEvent(crop Crop, image []byte, pred Prediction, location string, adv *Advisory) PredictionEvent {
	return PredictionEvent{
		ID:             generateID(crop, image),
		CropType:       crop,
		PredictedClass: pred.Label,
		DiseaseKey:     DiseaseKey(pred.Label),
		Confidence:     pred.Confidence,
		Location:       location,
		Advisory:       adv,
		PredictedAt:    Now(),
	}
}

func generateID(crop Crop, image []byte) string {
	h := sha256.New()
	h.Write([]byte(crop))
	h.Write([]byte{'|'})
	h.Write(image)
	return string(crop) + "-" + hex.EncodeToString(h.Sum(nil)[:8])
}
