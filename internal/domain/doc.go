// Package domain models the location-aware POI discovery engine's core types
// and algorithms: coordinates, weather observations, comfort preferences, and
// the percentile filter that reduces enriched candidates to a displayed subset.
//
// # Distance
//
// All distances are great-circle miles computed with the haversine formula and
// an Earth radius of 3959 miles. See [Distance]. Candidate stores are expected
// to return ascending-distance ordering from proximity queries; the engine
// never re-sorts.
//
// # Weather Sources
//
// Every WeatherObservation carries a Source tag describing its provenance:
//
//	live      fetched from the provider during this discovery cycle
//	cached    served from the freshness-windowed weather cache
//	fallback  synthetic pleasant-weather values used when no live data
//	          could be obtained (missing credentials, timeout, network error)
//
// Fallback is a representable outcome, not an error. A single candidate's
// provider failure degrades that candidate to fallback values and never fails
// the cycle.
//
// # Precipitation Heuristic
//
// Providers do not always supply a precipitation chance with current
// conditions. When absent, it is derived from the condition category:
//
//	thunderstorm 90 | rain 70 | snow 70 | drizzle 60 | cloudy 20 | else 10
//
// These constants are tunable defaults, not business rules.
//
// # Comfort Filtering
//
// Thresholds are relative to the current candidate set, never absolute:
// "cold" in July and "cold" in January both mean "the coldest available
// options right now". Each active preference dimension sorts its metric
// ascending and cuts at index floor(percentile * count):
//
//	Temperature:   cold ≤ p40 | mild within [p10, p90] | hot ≥ p60
//	Precipitation: none ≤ p60 | light within [p20, p70] | heavy ≥ p70
//	Wind:          calm ≤ p50 | breezy within [p30, p70] | windy ≥ p70
//
// Dimensions compose by intersection against the original input set, so the
// result is order-independent. An unset dimension is a no-op.
//
// # Location Methods
//
// UserLocationState.Method records how the active coordinate was obtained:
// "geolocation" (device lookup or an explicit manual repositioning),
// "ip" (IP-based lookup, no user gesture), or "none" (regional default in
// effect, prompt pending).
package domain
