package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

func rankedCandidates(ids ...string) []domain.EnrichedCandidate {
	out := make([]domain.EnrichedCandidate, len(ids))
	for i, id := range ids {
		out[i] = domain.EnrichedCandidate{
			RankedPOI: domain.RankedPOI{
				PointOfInterest: domain.PointOfInterest{ID: id},
				DistanceMiles:   float64(i * 10),
			},
		}
	}
	return out
}

func TestNavigator_StartsAtClosest(t *testing.T) {
	n := NewNavigator(rankedCandidates("a", "b", "c"), false)

	current, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "a", current.ID)
}

func TestNavigator_CloserAtBoundary(t *testing.T) {
	n := NewNavigator(rankedCandidates("a", "b"), false)

	current, err := n.Closer()
	assert.ErrorIs(t, err, ErrAtClosest)
	assert.Equal(t, "a", current.ID, "pointer stays put at the boundary")
}

func TestNavigator_FartherThenCloser(t *testing.T) {
	n := NewNavigator(rankedCandidates("a", "b", "c"), false)

	current, err := n.Farther()
	require.NoError(t, err)
	assert.Equal(t, "b", current.ID)

	current, err = n.Farther()
	require.NoError(t, err)
	assert.Equal(t, "c", current.ID)

	current, err = n.Closer()
	require.NoError(t, err)
	assert.Equal(t, "b", current.ID)
}

func TestNavigator_FartherAtEndWithExpansion(t *testing.T) {
	n := NewNavigator(rankedCandidates("a", "b"), true)

	_, err := n.Farther()
	require.NoError(t, err)

	current, err := n.Farther()
	assert.ErrorIs(t, err, ErrExpandSearch)
	assert.Equal(t, "b", current.ID)
}

func TestNavigator_FartherAtEndWithoutExpansion(t *testing.T) {
	n := NewNavigator(rankedCandidates("a"), false)

	current, err := n.Farther()
	assert.ErrorIs(t, err, ErrNoMoreResults)
	assert.Equal(t, "a", current.ID)
}

func TestNavigator_EmptyList(t *testing.T) {
	n := NewNavigator(nil, false)

	_, ok := n.Current()
	assert.False(t, ok)

	_, err := n.Closer()
	assert.ErrorIs(t, err, ErrNoCandidates)
	_, err = n.Farther()
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestNavigator_ReplaceClampsPointer(t *testing.T) {
	n := NewNavigator(rankedCandidates("a", "b", "c"), false)
	_, err := n.Farther()
	require.NoError(t, err)
	_, err = n.Farther()
	require.NoError(t, err)

	n.Replace(rankedCandidates("x", "y"), false)

	current, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "y", current.ID)

	n.Replace(nil, false)
	_, ok = n.Current()
	assert.False(t, ok)
}
