package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KeyValueStore.Get when the key is absent.
var ErrNotFound = errors.New("not found")

// ErrNoCredentials is returned by a WeatherProvider that has no API
// credentials configured. Callers treat it as a fallback trigger, not a
// user-facing failure.
var ErrNoCredentials = errors.New("no provider credentials configured")

// CandidateStore is the queryable store of points of interest.
type CandidateStore interface {
	// NearestTo returns up to limit POIs ordered by ascending great-circle
	// distance from origin, with distances in miles.
	NearestTo(ctx context.Context, origin Coordinate, limit int) ([]RankedPOI, error)

	// AllByImportance returns up to limit POIs ordered by descending
	// importance rank, used when no meaningful user position exists.
	AllByImportance(ctx context.Context, limit int) ([]PointOfInterest, error)
}

// ProviderReport is the raw current-conditions contract expected from a
// weather provider. PrecipChancePct is nil when the provider does not
// report one; the engine derives an estimate from the condition code.
type ProviderReport struct {
	TemperatureF    float64
	ConditionCode   string
	PrecipChancePct *int
	WindSpeedMPH    float64
}

// WeatherProvider fetches current conditions for a coordinate. Missing
// credentials and network failures are representable outcomes the enricher
// falls back on.
type WeatherProvider interface {
	CurrentConditions(ctx context.Context, at Coordinate) (ProviderReport, error)
}

// KeyValueStore persists small state blobs (user location, viewport,
// preferences). Last-write-wins; no transactional guarantees.
type KeyValueStore interface {
	// Get returns the value for key, or ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// IPLocator maps a client IP address to an approximate coordinate.
// Failures are silent from the user's perspective; the location resolver
// moves on to the next tier.
type IPLocator interface {
	Locate(ip string) (Coordinate, error)
}
