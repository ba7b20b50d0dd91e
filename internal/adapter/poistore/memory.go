package poistore

import (
	"context"
	"sort"
	"sync"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// MemoryPOI is a point of interest plus its importance rank, the seed shape
// for the in-memory store.
type MemoryPOI struct {
	domain.PointOfInterest
	Importance int
}

// Memory is an in-process domain.CandidateStore over a fixed POI slice.
type Memory struct {
	mu   sync.RWMutex
	pois []MemoryPOI
}

// NewMemory creates a store seeded with the given POIs.
func NewMemory(pois []MemoryPOI) *Memory {
	return &Memory{pois: pois}
}

// NearestTo computes distances with domain.Distance and sorts ascending.
func (m *Memory) NearestTo(_ context.Context, origin domain.Coordinate, limit int) ([]domain.RankedPOI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ranked := make([]domain.RankedPOI, 0, len(m.pois))
	for _, poi := range m.pois {
		ranked = append(ranked, domain.RankedPOI{
			PointOfInterest: poi.PointOfInterest,
			DistanceMiles:   domain.Distance(origin, poi.Coordinate),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].DistanceMiles < ranked[j].DistanceMiles
	})

	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// AllByImportance sorts by descending importance, name as tiebreaker.
func (m *Memory) AllByImportance(_ context.Context, limit int) ([]domain.PointOfInterest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := make([]MemoryPOI, len(m.pois))
	copy(sorted, m.pois)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Importance != sorted[j].Importance {
			return sorted[i].Importance > sorted[j].Importance
		}
		return sorted[i].Name < sorted[j].Name
	})

	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	out := make([]domain.PointOfInterest, len(sorted))
	for i, poi := range sorted {
		out[i] = poi.PointOfInterest
	}
	return out, nil
}
