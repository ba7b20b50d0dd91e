package viewport

import (
	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// Marker is the engine-side handle for one on-map POI marker. PopupOpen is
// interaction state owned by the presentation layer but preserved here so a
// data refresh does not close an open detail popup.
type Marker struct {
	ID         string
	Coordinate domain.Coordinate
	PopupOpen  bool
}

// Diff reports what one reconciliation pass changed, by marker ID.
type Diff struct {
	Created   []string
	Removed   []string
	Unchanged []string
}

// MarkerSet reconciles markers incrementally against successive candidate
// lists instead of rebuilding them wholesale. Not safe for concurrent use;
// the engine serializes cycles.
type MarkerSet struct {
	markers map[string]*Marker
}

// NewMarkerSet creates an empty marker set.
func NewMarkerSet() *MarkerSet {
	return &MarkerSet{markers: make(map[string]*Marker)}
}

// Reconcile updates the set to match the candidate list. Markers whose
// candidate disappeared are removed; markers whose coordinate is unchanged
// are left untouched, popup state included; new or moved candidates get a
// fresh marker.
func (s *MarkerSet) Reconcile(candidates []domain.EnrichedCandidate) Diff {
	var diff Diff

	next := make(map[string]domain.Coordinate, len(candidates))
	for _, c := range candidates {
		next[c.ID] = c.Coordinate
	}

	for id := range s.markers {
		if _, ok := next[id]; !ok {
			delete(s.markers, id)
			diff.Removed = append(diff.Removed, id)
		}
	}

	for _, c := range candidates {
		existing, ok := s.markers[c.ID]
		if ok && existing.Coordinate == c.Coordinate {
			diff.Unchanged = append(diff.Unchanged, c.ID)
			continue
		}
		// New candidate, or an existing one that moved: (re)create the
		// marker, which resets interaction state.
		s.markers[c.ID] = &Marker{ID: c.ID, Coordinate: c.Coordinate}
		diff.Created = append(diff.Created, c.ID)
	}

	return diff
}

// Get returns the marker for id, if present.
func (s *MarkerSet) Get(id string) (*Marker, bool) {
	m, ok := s.markers[id]
	return m, ok
}

// Len returns the number of markers currently on the map.
func (s *MarkerSet) Len() int {
	return len(s.markers)
}
