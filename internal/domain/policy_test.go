package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name string
		agg  ForecastAggregate
		want Decision
	}{
		{
			name: "no data",
			agg:  ForecastAggregate{},
			want: DecisionNoData,
		},
		{
			name: "heavy rain wins over every other tier",
			agg:  ForecastAggregate{RainMM: Float(12), MaxPOP: Float(0.9), AvgHumidity: Float(95)},
			want: DecisionHeavyRain,
		},
		{
			name: "rain exactly at threshold",
			agg:  ForecastAggregate{RainMM: Float(10)},
			want: DecisionHeavyRain,
		},
		{
			name: "rain just below threshold falls through",
			agg:  ForecastAggregate{RainMM: Float(9.999)},
			want: DecisionSuitable,
		},
		{
			name: "high pop before humidity",
			agg:  ForecastAggregate{RainMM: Float(2), MaxPOP: Float(0.6), AvgHumidity: Float(99)},
			want: DecisionHighPrecipProb,
		},
		{
			name: "high humidity",
			agg:  ForecastAggregate{RainMM: Float(0), MaxPOP: Float(0.59), AvgHumidity: Float(85)},
			want: DecisionHighHumidity,
		},
		{
			name: "nil pop skips pop tier",
			agg:  ForecastAggregate{RainMM: Float(0), AvgHumidity: Float(90)},
			want: DecisionHighHumidity,
		},
		{
			name: "suitable",
			agg:  ForecastAggregate{RainMM: Float(1), MaxPOP: Float(0.2), AvgHumidity: Float(60)},
			want: DecisionSuitable,
		},
		{
			name: "rain only, zero",
			agg:  ForecastAggregate{RainMM: Float(0)},
			want: DecisionSuitable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommend(tt.agg, AdvisoryDays)
			assert.Equal(t, tt.want, got.Decision)
			assert.NotEmpty(t, got.Text)
		})
	}
}

func TestRecommend_HeavyRainTextMentionsAmountAndDays(t *testing.T) {
	got := Recommend(ForecastAggregate{RainMM: Float(12.04)}, 3)
	assert.Contains(t, got.Text, "12.0 mm")
	assert.Contains(t, got.Text, "3 days")
}
