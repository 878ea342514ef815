// Package catalog holds the read-only treatment catalog: remedies and
// per-disease weather rules keyed by crop and disease key.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed treatments.yaml
var defaultDocument []byte

// Remedy is one organic or chemical treatment option.
type Remedy struct {
	Cure       string `yaml:"cure" json:"cure"`
	Dosage     string `yaml:"dosage" json:"dosage"`
	Prevention string `yaml:"prevention" json:"prevention"`
}

// Treatment is the catalog entry for one disease of one crop.
type Treatment struct {
	Organic      []Remedy                 `yaml:"organic" json:"organic"`
	Chemical     []Remedy                 `yaml:"chemical" json:"chemical"`
	WeatherRules domain.WeatherThresholds `yaml:"weather_rules" json:"weather_rules"`
}

// EmptyTreatment is returned to clients when a predicted class has no entry.
// Both lists are non-nil so they encode as [] rather than null.
func EmptyTreatment() Treatment {
	return Treatment{Organic: []Remedy{}, Chemical: []Remedy{}}
}

// Catalog maps crop -> disease key -> treatment. It is immutable after Load.
type Catalog struct {
	entries map[domain.Crop]map[string]Treatment
}

// Load decodes and validates a catalog document. Unknown fields, unknown
// crops, non-normalized disease keys and negative thresholds are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw map[string]map[string]Treatment
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode catalog: empty document")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{entries: make(map[domain.Crop]map[string]Treatment, len(raw))}
	for cropName, diseases := range raw {
		crop, err := domain.ParseCrop(cropName)
		if err != nil {
			return nil, fmt.Errorf("catalog crop %q: %w", cropName, err)
		}
		if string(crop) != cropName {
			return nil, fmt.Errorf("catalog crop %q must be lowercase", cropName)
		}

		byKey := make(map[string]Treatment, len(diseases))
		for key, t := range diseases {
			if key == "" || domain.DiseaseKey(key) != key {
				return nil, fmt.Errorf("catalog %s: disease key %q is not normalized", crop, key)
			}
			if err := validateRules(t.WeatherRules); err != nil {
				return nil, fmt.Errorf("catalog %s/%s: %w", crop, key, err)
			}
			byKey[key] = t
		}
		c.entries[crop] = byKey
	}
	return c, nil
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultDocument))
}

func validateRules(th domain.WeatherThresholds) error {
	if th.HeavyRainMM != nil && *th.HeavyRainMM < 0 {
		return fmt.Errorf("heavy_rain_mm must be non-negative, got %g", *th.HeavyRainMM)
	}
	if th.HumidityHighPct != nil && (*th.HumidityHighPct < 0 || *th.HumidityHighPct > 100) {
		return fmt.Errorf("humidity_high_pct must be within 0..100, got %g", *th.HumidityHighPct)
	}
	return nil
}

// Lookup returns the treatment for a crop and disease key.
func (c *Catalog) Lookup(crop domain.Crop, diseaseKey string) (Treatment, bool) {
	t, ok := c.entries[crop][diseaseKey]
	return t, ok
}

// Thresholds returns the disease's weather rules. A missing entry yields
// empty thresholds, which never override anything.
func (c *Catalog) Thresholds(crop domain.Crop, diseaseKey string) domain.WeatherThresholds {
	t, ok := c.Lookup(crop, diseaseKey)
	if !ok {
		return domain.WeatherThresholds{}
	}
	return t.WeatherRules
}

// FindByDisease returns the first crop, in catalog order, that has an entry
// for diseaseKey.
func (c *Catalog) FindByDisease(diseaseKey string) (domain.Crop, Treatment, bool) {
	for _, crop := range domain.Crops {
		if t, ok := c.entries[crop][diseaseKey]; ok {
			return crop, t, true
		}
	}
	return "", Treatment{}, false
}

// Crops returns the crops present in the catalog, in catalog order.
func (c *Catalog) Crops() []domain.Crop {
	var out []domain.Crop
	for _, crop := range domain.Crops {
		if _, ok := c.entries[crop]; ok {
			out = append(out, crop)
		}
	}
	return out
}

// Keys returns the disease keys for a crop. Order is unspecified.
func (c *Catalog) Keys(crop domain.Crop) []string {
	keys := make([]string, 0, len(c.entries[crop]))
	for k := range c.entries[crop] {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of treatments across all crops.
// Loaded reports whether the catalog holds at least one treatment. It is
// safe to call on a nil catalog.
func (c *Catalog) Loaded() bool {
	return c != nil && len(c.entries) > 0
}

func (c *Catalog) Len() int {
	n := 0
	for _, byKey := range c.entries {
		n += len(byKey)
	}
	return n
}
