package domain

import "time"

// Condition is the engine's normalized weather condition vocabulary.
type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionCloudy       Condition = "cloudy"
	ConditionDrizzle      Condition = "drizzle"
	ConditionRain         Condition = "rain"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionSnow         Condition = "snow"
	ConditionFog          Condition = "fog"
	ConditionUnknown      Condition = "unknown"
)

// Source records the provenance of a WeatherObservation.
type Source string

const (
	SourceLive     Source = "live"
	SourceCached   Source = "cached"
	SourceFallback Source = "fallback"
)

// WeatherObservation is a current-conditions snapshot for one coordinate.
type WeatherObservation struct {
	TemperatureF    int       `json:"temperatureF"`
	Condition       Condition `json:"condition"`
	PrecipChancePct int       `json:"precipChancePct"`
	WindSpeedMPH    int       `json:"windSpeedMPH"`
	Source          Source    `json:"source"`
	ObservedAt      time.Time `json:"observedAt"`
}

// NormalizeCondition maps a provider's condition vocabulary onto the
// engine's enumerated set. Provider codes follow the OpenWeatherMap
// "main" field conventions.
func NormalizeCondition(code string) Condition {
	switch code {
	case "Clear":
		return ConditionClear
	case "Clouds":
		return ConditionCloudy
	case "Drizzle":
		return ConditionDrizzle
	case "Rain":
		return ConditionRain
	case "Thunderstorm":
		return ConditionThunderstorm
	case "Snow":
		return ConditionSnow
	case "Mist", "Fog", "Haze":
		return ConditionFog
	default:
		return ConditionUnknown
	}
}

// PrecipChanceFor estimates a precipitation chance from a condition category,
// used when the provider does not report one directly. Constants are tunable
// defaults, not business rules.
func PrecipChanceFor(c Condition) int {
	switch c {
	case ConditionThunderstorm:
		return 90
	case ConditionRain, ConditionSnow:
		return 70
	case ConditionDrizzle:
		return 60
	case ConditionCloudy:
		return 20
	default:
		return 10
	}
}

// FallbackObservation returns the synthetic pleasant-weather observation used
// when no live data can be obtained. Always tagged SourceFallback so the
// presentation layer can mark data quality.
func FallbackObservation() WeatherObservation {
	return WeatherObservation{
		TemperatureF:    72,
		Condition:       ConditionClear,
		PrecipChancePct: 10,
		WindSpeedMPH:    5,
		Source:          SourceFallback,
		ObservedAt:      Now(),
	}
}
