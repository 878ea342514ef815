package domain

import (
	"fmt"
	"strings"
)

// Crop identifies one of the supported crops. Each crop has its own
// classifier and label set.
type Crop string

const (
	CropPotato Crop = "potato"
	CropTomato Crop = "tomato"
	CropPepper Crop = "pepper"
	CropRice   Crop = "rice"
)

// Crops lists the supported crops in catalog order.
var Crops = []Crop{CropPotato, CropTomato, CropPepper, CropRice}

// ParseCrop normalizes a crop type (trim + lowercase) and rejects unknown values.
func ParseCrop(s string) (Crop, error) {
	c := Crop(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Crops {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown crop type %q (use potato/tomato/pepper/rice)", ErrInvalidInput, s)
}

// DiseaseKey converts a predicted label into the key used by the treatment
// catalog: trimmed, lowercased, spaces replaced with underscores.
// "Early blight" -> "early_blight".
func DiseaseKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}

// Prediction is the output of the classification boundary.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}
