// Package classify is the boundary to the crop disease image models.
package classify

import (
	"context"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
)

// Classifier predicts a disease label for a leaf image of the given crop.
// Errors are domain.ErrModelUnavailable or domain.ErrPredictionFailed.
type Classifier interface {
	Classify(ctx context.Context, image []byte, crop domain.Crop) (domain.Prediction, error)
}

// argmax returns the index and value of the largest score. scores must be
// non-empty.
func argmax(scores []float64) (int, float64) {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best, scores[best]
}
