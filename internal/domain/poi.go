package domain

// PointOfInterest is a named outdoor-recreation destination with a fixed
// coordinate. Created by the external candidate store; read-only to the
// engine and never cached beyond a single discovery cycle.
type PointOfInterest struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
	Category   string     `json:"category"`

	// Optional descriptive metadata.
	Phone     string   `json:"phone,omitempty"`
	Website   string   `json:"website,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
}

// RankedPOI is a point of interest paired with its distance from a query
// origin, as returned by proximity queries.
type RankedPOI struct {
	PointOfInterest
	DistanceMiles float64 `json:"distanceMiles"`
}

// EnrichedCandidate is a ranked POI with its current weather observation.
// Transient: recomputed every discovery cycle, never persisted.
type EnrichedCandidate struct {
	RankedPOI
	Weather WeatherObservation `json:"weather"`
}
