package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// coordinatePairRe matches a literal "lat,lon" input such as "18.52,73.85" or
// " -33.9 , 151.2 ". Anything else is treated as a place name.
var coordinatePairRe = regexp.MustCompile(`^\s*([+-]?\d+(?:\.\d+)?)\s*,\s*([+-]?\d+(?:\.\d+)?)\s*$`)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParseCoordinates parses a literal "lat,lon" input. The boolean reports
// whether the input had that shape at all; a pair outside the valid
// latitude/longitude range is returned as ErrInvalidInput.
func ParseCoordinates(input string) (Coordinates, bool, error) {
	m := coordinatePairRe.FindStringSubmatch(input)
	if m == nil {
		return Coordinates{}, false, nil
	}

	lat, errLat := strconv.ParseFloat(m[1], 64)
	lon, errLon := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLon != nil {
		return Coordinates{}, true, fmt.Errorf("%w: malformed coordinates %q", ErrInvalidInput, input)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinates{}, true, fmt.Errorf("%w: coordinates out of range %q", ErrInvalidInput, input)
	}
	return Coordinates{Lat: lat, Lon: lon}, true, nil
}

// NormalizeLocationKey returns the geocode cache key for a location input.
// It is idempotent.
func NormalizeLocationKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
