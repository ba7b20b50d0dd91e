package domain

import (
	"math"
	"slices"
)

// TemperaturePreference selects a relative temperature band.
type TemperaturePreference string

const (
	TempUnset TemperaturePreference = ""
	TempCold  TemperaturePreference = "cold"
	TempMild  TemperaturePreference = "mild"
	TempHot   TemperaturePreference = "hot"
)

// PrecipitationPreference selects a relative precipitation-chance band.
type PrecipitationPreference string

const (
	PrecipUnset PrecipitationPreference = ""
	PrecipNone  PrecipitationPreference = "none"
	PrecipLight PrecipitationPreference = "light"
	PrecipHeavy PrecipitationPreference = "heavy"
)

// WindPreference selects a relative wind-speed band.
type WindPreference string

const (
	WindUnset  WindPreference = ""
	WindCalm   WindPreference = "calm"
	WindBreezy WindPreference = "breezy"
	WindWindy  WindPreference = "windy"
)

// ComfortPreferences is the user's relative comfort selection. Passed by
// value into the engine; never mutated by it. An unset dimension applies no
// filtering on that axis.
type ComfortPreferences struct {
	Temperature   TemperaturePreference   `json:"temperature"`
	Precipitation PrecipitationPreference `json:"precipitation"`
	Wind          WindPreference          `json:"wind"`
}

// FilterByComfort returns the subset of candidates matching the active
// preference dimensions. Thresholds are percentiles of the input set's own
// metric distribution, so each dimension's cut is computed against the full
// input before intersecting. The output is always a subset of the input and
// preserves input order. An empty input returns an empty slice without
// computing percentiles.
func FilterByComfort(candidates []EnrichedCandidate, prefs ComfortPreferences) []EnrichedCandidate {
	if len(candidates) == 0 {
		return []EnrichedCandidate{}
	}

	checks := make([]func(EnrichedCandidate) bool, 0, 3)
	if p := temperatureCheck(candidates, prefs.Temperature); p != nil {
		checks = append(checks, p)
	}
	if p := precipitationCheck(candidates, prefs.Precipitation); p != nil {
		checks = append(checks, p)
	}
	if p := windCheck(candidates, prefs.Wind); p != nil {
		checks = append(checks, p)
	}

	out := make([]EnrichedCandidate, 0, len(candidates))
	for _, c := range candidates {
		keep := true
		for _, check := range checks {
			if !check(c) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, c)
		}
	}
	return out
}

func temperatureCheck(candidates []EnrichedCandidate, pref TemperaturePreference) func(EnrichedCandidate) bool {
	if pref == TempUnset {
		return nil
	}
	sorted := sortedMetric(candidates, func(c EnrichedCandidate) int { return c.Weather.TemperatureF })
	switch pref {
	case TempCold:
		cut := percentileValue(sorted, 0.4)
		return func(c EnrichedCandidate) bool { return c.Weather.TemperatureF <= cut }
	case TempHot:
		cut := percentileValue(sorted, 0.6)
		return func(c EnrichedCandidate) bool { return c.Weather.TemperatureF >= cut }
	case TempMild:
		lo, hi := percentileValue(sorted, 0.1), percentileValue(sorted, 0.9)
		return func(c EnrichedCandidate) bool {
			return c.Weather.TemperatureF >= lo && c.Weather.TemperatureF <= hi
		}
	}
	return nil
}

func precipitationCheck(candidates []EnrichedCandidate, pref PrecipitationPreference) func(EnrichedCandidate) bool {
	if pref == PrecipUnset {
		return nil
	}
	sorted := sortedMetric(candidates, func(c EnrichedCandidate) int { return c.Weather.PrecipChancePct })
	switch pref {
	case PrecipNone:
		cut := percentileValue(sorted, 0.6)
		return func(c EnrichedCandidate) bool { return c.Weather.PrecipChancePct <= cut }
	case PrecipLight:
		lo, hi := percentileValue(sorted, 0.2), percentileValue(sorted, 0.7)
		return func(c EnrichedCandidate) bool {
			return c.Weather.PrecipChancePct >= lo && c.Weather.PrecipChancePct <= hi
		}
	case PrecipHeavy:
		cut := percentileValue(sorted, 0.7)
		return func(c EnrichedCandidate) bool { return c.Weather.PrecipChancePct >= cut }
	}
	return nil
}

func windCheck(candidates []EnrichedCandidate, pref WindPreference) func(EnrichedCandidate) bool {
	if pref == WindUnset {
		return nil
	}
	sorted := sortedMetric(candidates, func(c EnrichedCandidate) int { return c.Weather.WindSpeedMPH })
	switch pref {
	case WindCalm:
		cut := percentileValue(sorted, 0.5)
		return func(c EnrichedCandidate) bool { return c.Weather.WindSpeedMPH <= cut }
	case WindBreezy:
		lo, hi := percentileValue(sorted, 0.3), percentileValue(sorted, 0.7)
		return func(c EnrichedCandidate) bool {
			return c.Weather.WindSpeedMPH >= lo && c.Weather.WindSpeedMPH <= hi
		}
	case WindWindy:
		cut := percentileValue(sorted, 0.7)
		return func(c EnrichedCandidate) bool { return c.Weather.WindSpeedMPH >= cut }
	}
	return nil
}

func sortedMetric(candidates []EnrichedCandidate, metric func(EnrichedCandidate) int) []int {
	values := make([]int, len(candidates))
	for i, c := range candidates {
		values[i] = metric(c)
	}
	slices.Sort(values)
	return values
}

// percentileValue returns the value at index floor(p * count) of the
// ascending-sorted metric slice, clamped to the last element. Callers
// guarantee a non-empty slice.
func percentileValue(sorted []int, p float64) int {
	idx := int(math.Floor(p * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
