package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

func TestMarkerSet_InitialReconcileCreatesAll(t *testing.T) {
	s := NewMarkerSet()
	candidates := []domain.EnrichedCandidate{
		candidateAt("a", 46.8, -94.7),
		candidateAt("b", 46.9, -94.5),
	}

	diff := s.Reconcile(candidates)

	assert.ElementsMatch(t, []string{"a", "b"}, diff.Created)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Unchanged)
	assert.Equal(t, 2, s.Len())
}

func TestMarkerSet_IdenticalListIsZeroChurn(t *testing.T) {
	s := NewMarkerSet()
	candidates := []domain.EnrichedCandidate{
		candidateAt("a", 46.8, -94.7),
		candidateAt("b", 46.9, -94.5),
		candidateAt("c", 46.6, -94.9),
	}
	s.Reconcile(candidates)

	diff := s.Reconcile(candidates)

	assert.Empty(t, diff.Created)
	assert.Empty(t, diff.Removed)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, diff.Unchanged)
}

func TestMarkerSet_RemovedCandidateRemovesMarker(t *testing.T) {
	s := NewMarkerSet()
	s.Reconcile([]domain.EnrichedCandidate{
		candidateAt("a", 46.8, -94.7),
		candidateAt("b", 46.9, -94.5),
	})

	diff := s.Reconcile([]domain.EnrichedCandidate{
		candidateAt("a", 46.8, -94.7),
	})

	assert.Equal(t, []string{"b"}, diff.Removed)
	assert.Equal(t, []string{"a"}, diff.Unchanged)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("b")
	assert.False(t, ok)
}

func TestMarkerSet_UnchangedMarkerPreservesPopupState(t *testing.T) {
	s := NewMarkerSet()
	s.Reconcile([]domain.EnrichedCandidate{candidateAt("a", 46.8, -94.7)})

	m, ok := s.Get("a")
	require.True(t, ok)
	m.PopupOpen = true

	s.Reconcile([]domain.EnrichedCandidate{candidateAt("a", 46.8, -94.7)})

	m, ok = s.Get("a")
	require.True(t, ok)
	assert.True(t, m.PopupOpen, "open popup survives a data refresh")
}

func TestMarkerSet_MovedCandidateRecreatesMarker(t *testing.T) {
	s := NewMarkerSet()
	s.Reconcile([]domain.EnrichedCandidate{candidateAt("a", 46.8, -94.7)})

	m, _ := s.Get("a")
	m.PopupOpen = true

	diff := s.Reconcile([]domain.EnrichedCandidate{candidateAt("a", 46.85, -94.7)})

	assert.Equal(t, []string{"a"}, diff.Created)
	assert.Empty(t, diff.Unchanged)

	m, ok := s.Get("a")
	require.True(t, ok)
	assert.False(t, m.PopupOpen, "moved marker resets interaction state")
	assert.InDelta(t, 46.85, m.Coordinate.Latitude, 1e-9)
}

func TestMarkerSet_EmptyListRemovesEverything(t *testing.T) {
	s := NewMarkerSet()
	s.Reconcile([]domain.EnrichedCandidate{
		candidateAt("a", 46.8, -94.7),
		candidateAt("b", 46.9, -94.5),
	})

	diff := s.Reconcile(nil)

	assert.ElementsMatch(t, []string{"a", "b"}, diff.Removed)
	assert.Equal(t, 0, s.Len())
}
