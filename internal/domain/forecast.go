package domain

import "math"

// EntriesPerDay is the number of 3-hour forecast buckets in one day.
const EntriesPerDay = 8

// ForecastEntry is one 3-hour forecast bucket. Nil fields were not reported
// by the provider.
type ForecastEntry struct {
	Rain3h            *float64 `json:"rain_3h,omitempty"`
	PrecipProbability *float64 `json:"pop,omitempty"`
	HumidityPct       *float64 `json:"humidity_pct,omitempty"`
}

// ForecastSeries is a chronological sequence of 3-hour entries starting at
// request time.
type ForecastSeries []ForecastEntry

// ForecastAggregate summarizes a forecast window. A nil field means no entry
// in the window carried that signal, which is different from zero.
type ForecastAggregate struct {
	RainMM      *float64 `json:"rain_mm"`
	MaxPOP      *float64 `json:"max_pop"`
	AvgHumidity *float64 `json:"avg_humidity"`
}

// Empty reports whether the aggregate carries no data at all.
func (a ForecastAggregate) Empty() bool {
	return a.RainMM == nil && a.MaxPOP == nil && a.AvgHumidity == nil
}

// Window returns the leading entries covering the next days,
// min(len(series), days*8).
func (s ForecastSeries) Window(days int) ForecastSeries {
	if days <= 0 {
		return nil
	}
	n := min(len(s), days*EntriesPerDay)
	return s[:n]
}

// Aggregate reduces the first days*8 entries of series to cumulative rain,
// peak precipitation probability and mean humidity. Values are full
// precision; use Rounded for display.
func Aggregate(series ForecastSeries, days int) ForecastAggregate {
	window := series.Window(days)
	if len(window) == 0 {
		return ForecastAggregate{}
	}

	var (
		rainSum     float64
		maxPOP      float64
		popSeen     bool
		humiditySum float64
		humidityN   int
	)

	for _, e := range window {
		// Missing rain counts as zero: the total is the sum of what is known.
		if e.Rain3h != nil {
			rainSum += *e.Rain3h
		}
		if e.PrecipProbability != nil {
			if !popSeen || *e.PrecipProbability > maxPOP {
				maxPOP = *e.PrecipProbability
			}
			popSeen = true
		}
		if e.HumidityPct != nil {
			humiditySum += *e.HumidityPct
			humidityN++
		}
	}

	agg := ForecastAggregate{RainMM: &rainSum}
	if popSeen {
		agg.MaxPOP = &maxPOP
	}
	if humidityN > 0 {
		avg := humiditySum / float64(humidityN)
		agg.AvgHumidity = &avg
	}
	return agg
}

// Rounded returns a display copy: rain and pop to 2 decimals, humidity to 1.
// Thresholds must be evaluated before rounding.
func (a ForecastAggregate) Rounded() ForecastAggregate {
	return ForecastAggregate{
		RainMM:      roundPtr(a.RainMM, 2),
		MaxPOP:      roundPtr(a.MaxPOP, 2),
		AvgHumidity: roundPtr(a.AvgHumidity, 1),
	}
}

func roundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	p := math.Pow(10, float64(places))
	r := math.Round(*v*p) / p
	return &r
}

// Float returns a pointer to v. Handy for building entries and thresholds.
func Float(v float64) *float64 {
	return &v
}
