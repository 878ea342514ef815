package domain

import (
	"errors"
	"fmt"
)

// Failure modes shared across the advisory pipeline. Adapters convert
// transport and decoding failures into one of these at the call boundary;
// callers match with errors.Is.
var (
	// ErrNotFound means a location could not be resolved to coordinates.
	ErrNotFound = errors.New("location not found")

	// ErrUnavailable means the weather provider could not be reached, returned
	// an error, or has no credential configured.
	ErrUnavailable = errors.New("weather provider unavailable")

	// ErrInvalidInput covers malformed "lat,lon" pairs, unknown crop types and
	// unreadable uploads.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLocationRequired is returned when the deployment requires a location
	// and none was supplied.
	ErrLocationRequired = fmt.Errorf("%w: location is required", ErrInvalidInput)

	// ErrModelUnavailable means no classifier is available for the crop.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPredictionFailed means the classifier was reachable but did not
	// produce a usable prediction.
	ErrPredictionFailed = errors.New("model prediction failed")
)
