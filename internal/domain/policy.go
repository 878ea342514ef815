package domain

import "fmt"

// Generic policy thresholds. These are fixed and not configurable per call.
const (
	HeavyRainMM     = 10.0
	HighPrecipProb  = 0.6
	HighHumidityPct = 85.0
)

// AdvisoryDays is the forecast window used for every advisory.
const AdvisoryDays = 3

// Decision is a machine-readable tag for the recommendation that was chosen.
type Decision string

const (
	DecisionNoData              Decision = "no_data"
	DecisionHeavyRain           Decision = "heavy_rain"
	DecisionHighPrecipProb      Decision = "high_pop"
	DecisionHighHumidity        Decision = "high_humidity"
	DecisionSuitable            Decision = "suitable"
	DecisionDiseaseHeavyRain    Decision = "disease_heavy_rain"
	DecisionDiseaseHighHumidity Decision = "disease_high_humidity"
)

// Recommendation pairs a decision with its human-readable text. The wording
// is illustrative; the decision is the contract.
type Recommendation struct {
	Decision Decision
	Text     string
}

// Recommend evaluates the generic tiers in order; the first match wins.
func Recommend(agg ForecastAggregate, days int) Recommendation {
	switch {
	case agg.Empty():
		return Recommendation{
			Decision: DecisionNoData,
			Text:     "No weather data.",
		}
	case agg.RainMM != nil && *agg.RainMM >= HeavyRainMM:
		return Recommendation{
			Decision: DecisionHeavyRain,
			Text: fmt.Sprintf("Heavy rain (~%.1f mm over next %d days). Chemical sprays may wash off; recommend waiting 3-4 days.",
				*agg.RainMM, days),
		}
	case agg.MaxPOP != nil && *agg.MaxPOP >= HighPrecipProb:
		return Recommendation{
			Decision: DecisionHighPrecipProb,
			Text:     fmt.Sprintf("High chance of rain (peak %.0f%%). Prefer organic or delay chemical spray.", *agg.MaxPOP*100),
		}
	case agg.AvgHumidity != nil && *agg.AvgHumidity >= HighHumidityPct:
		return Recommendation{
			Decision: DecisionHighHumidity,
			Text:     fmt.Sprintf("Very high humidity (~%.0f%%), conditions favor disease. Consider preventive treatment.", *agg.AvgHumidity),
		}
	default:
		return Recommendation{
			Decision: DecisionSuitable,
			Text:     "Weather suitable for application now.",
		}
	}
}
