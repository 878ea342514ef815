package domain

import "fmt"

// WeatherThresholds are optional per-disease override thresholds. A nil
// field means the disease has no rule for that signal.
type WeatherThresholds struct {
	HeavyRainMM     *float64 `yaml:"heavy_rain_mm,omitempty" json:"heavy_rain_mm,omitempty"`
	HumidityHighPct *float64 `yaml:"humidity_high_pct,omitempty" json:"humidity_high_pct,omitempty"`
}

// Advisory is the weather advisory attached to a prediction.
type Advisory struct {
	RainMM         *float64 `json:"rain_mm"`
	MaxPOP         *float64 `json:"max_pop"`
	AvgHumidity    *float64 `json:"avg_humidity"`
	Recommendation string   `json:"recommendation"`
	Decision       Decision `json:"decision"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
}

// NewAdvisory builds an advisory from a full-precision aggregate and the
// generic recommendation.
func NewAdvisory(agg ForecastAggregate, rec Recommendation, coords Coordinates) Advisory {
	return Advisory{
		RainMM:         agg.RainMM,
		MaxPOP:         agg.MaxPOP,
		AvgHumidity:    agg.AvgHumidity,
		Recommendation: rec.Text,
		Decision:       rec.Decision,
		Lat:            coords.Lat,
		Lon:            coords.Lon,
	}
}

// ApplyDiseaseOverride replaces the generic recommendation when the
// disease's own thresholds are met. The rain rule is checked first and the
// humidity rule second, so when both fire the humidity text is kept.
//
// TODO: revisit precedence once clients can accept a change; the rain rule
// arguably should win when both fire.
func ApplyDiseaseOverride(adv Advisory, th WeatherThresholds) Advisory {
	if th.HeavyRainMM != nil && adv.RainMM != nil && *adv.RainMM >= *th.HeavyRainMM {
		adv.Recommendation = fmt.Sprintf("Based on disease-specific rule (rain >= %g mm) heavy rain expected; delay chemical spraying.", *th.HeavyRainMM)
		adv.Decision = DecisionDiseaseHeavyRain
	}
	if th.HumidityHighPct != nil && adv.AvgHumidity != nil && *adv.AvgHumidity >= *th.HumidityHighPct {
		adv.Recommendation = fmt.Sprintf("Based on disease-specific rule (humidity >= %g%%) high humidity detected; consider preventive steps.", *th.HumidityHighPct)
		adv.Decision = DecisionDiseaseHighHumidity
	}
	return adv
}

// Rounded returns the advisory with display rounding applied to the
// aggregate fields.
func (a Advisory) Rounded() Advisory {
	r := ForecastAggregate{RainMM: a.RainMM, MaxPOP: a.MaxPOP, AvgHumidity: a.AvgHumidity}.Rounded()
	a.RainMM, a.MaxPOP, a.AvgHumidity = r.RainMM, r.MaxPOP, r.AvgHumidity
	return a
}
