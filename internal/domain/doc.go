// Package domain models the crop advisory decision pipeline: location
// resolution, forecast aggregation, the generic recommendation policy and the
// per-disease override.
//
// # Forecast Source
//
// Forecasts come from the OpenWeather 5 day / 3 hour endpoint. Each entry in
// the response "list" covers three hours, so one day is 8 entries and the
// full response is about 40 entries. Entries are ordered from request time.
//
// Signals used per entry:
//
//	rain["3h"]     rain volume in mm for the bucket (absent when dry)
//	pop            probability of precipitation, 0..1
//	main.humidity  relative humidity, percent
//
// # Aggregation
//
// An advisory looks at the next [AdvisoryDays] days, i.e. the first
// min(len, days*8) entries:
//
//	rain_mm       sum of rain["3h"], missing buckets count as 0
//	max_pop       maximum pop over entries that report it
//	avg_humidity  mean humidity over entries that report it
//
// A field with no contributing entries is nil, never 0. Display rounding
// (2, 2 and 1 decimals) happens after every threshold comparison.
//
// # Policy
//
// Generic tiers, first match wins:
//
//	no data                 -> no_data
//	rain_mm >= 10           -> heavy_rain
//	max_pop >= 0.6          -> high_pop
//	avg_humidity >= 85      -> high_humidity
//	otherwise               -> suitable
//
// Diseases may carry their own heavy_rain_mm and humidity_high_pct
// thresholds in the treatment catalog. Both are checked after the generic
// tiers, rain first, humidity second; the humidity text wins when both fire.
//
// # Disease Keys
//
// Classifier labels map to catalog keys by trimming, lowercasing and
// replacing spaces with underscores: "Early blight" -> "early_blight".
package domain
