package viewport

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

func candidateAt(id string, lat, lon float64) domain.EnrichedCandidate {
	return domain.EnrichedCandidate{
		RankedPOI: domain.RankedPOI{
			PointOfInterest: domain.PointOfInterest{
				ID:         id,
				Coordinate: domain.Coordinate{Latitude: lat, Longitude: lon},
			},
		},
	}
}

func TestComputeView_EmptyCandidatesCentersOnUser(t *testing.T) {
	user := domain.Coordinate{Latitude: 46.7296, Longitude: -94.6859}

	view := ComputeView(nil, &user)

	assert.Equal(t, user, view.Center)
	assert.Equal(t, domain.DefaultZoom, view.Zoom)
}

func TestComputeView_EmptyCandidatesNoUserUsesDefault(t *testing.T) {
	view := ComputeView(nil, nil)

	assert.Equal(t, domain.DefaultCenter, view.Center)
	assert.Equal(t, domain.DefaultZoom, view.Zoom)
}

func TestComputeView_BoundsContainUserAndNearestCandidates(t *testing.T) {
	user := domain.Coordinate{Latitude: 46.7296, Longitude: -94.6859}
	candidates := []domain.EnrichedCandidate{
		candidateAt("a", 46.8, -94.7),
		candidateAt("b", 46.9, -94.5),
		candidateAt("c", 46.6, -94.9),
	}

	view := ComputeView(candidates, &user)

	assert.True(t, InBounds(user, view), "user inside the computed view")
	for _, c := range candidates {
		assert.True(t, InBounds(c.Coordinate, view), "candidate %s inside the computed view", c.ID)
	}
	assert.GreaterOrEqual(t, view.Zoom, minZoom)
	assert.LessOrEqual(t, view.Zoom, maxZoom)
}

func TestComputeView_OnlyNearestFiveBoundTheView(t *testing.T) {
	user := domain.Coordinate{Latitude: 46.7296, Longitude: -94.6859}
	candidates := make([]domain.EnrichedCandidate, 0, 6)
	for i := range 5 {
		candidates = append(candidates, candidateAt(fmt.Sprintf("near%d", i), 46.73+float64(i)*0.01, -94.68))
	}
	// A distant outlier should not widen the view.
	candidates = append(candidates, candidateAt("outlier", 40.0, -80.0))

	view := ComputeView(candidates, &user)

	assert.False(t, InBounds(domain.Coordinate{Latitude: 40.0, Longitude: -80.0}, view))
}

func TestComputeView_NoUserBoundsAllCandidates(t *testing.T) {
	candidates := []domain.EnrichedCandidate{
		candidateAt("a", 46.5, -94.2),
		candidateAt("b", 47.1, -95.3),
	}

	view := ComputeView(candidates, nil)

	for _, c := range candidates {
		assert.True(t, InBounds(c.Coordinate, view))
	}
}

func TestComputeView_ZoomClampedForTightCluster(t *testing.T) {
	user := domain.Coordinate{Latitude: 46.7296, Longitude: -94.6859}
	candidates := []domain.EnrichedCandidate{
		candidateAt("a", 46.72961, -94.68591),
		candidateAt("b", 46.72962, -94.68592),
	}

	view := ComputeView(candidates, &user)
	assert.Equal(t, maxZoom, view.Zoom)
}

func TestComputeView_ZoomClampedForWideSpread(t *testing.T) {
	user := domain.Coordinate{Latitude: 46.7296, Longitude: -94.6859}
	candidates := []domain.EnrichedCandidate{
		candidateAt("a", 30.0, -120.0),
		candidateAt("b", 60.0, -70.0),
	}

	view := ComputeView(candidates, &user)
	assert.Equal(t, minZoom, view.Zoom)
}

func TestRecenter(t *testing.T) {
	view := domain.ViewportState{
		Center: domain.Coordinate{Latitude: 46.7296, Longitude: -94.6859},
		Zoom:   11,
	}

	t.Run("subject already visible leaves the view alone", func(t *testing.T) {
		subject := domain.Coordinate{Latitude: 46.74, Longitude: -94.69}
		require.True(t, InBounds(subject, view))

		got, moved := Recenter(view, subject)
		assert.False(t, moved)
		assert.Equal(t, view, got)
	})

	t.Run("subject outside bounds pans to it", func(t *testing.T) {
		subject := domain.Coordinate{Latitude: 48.0, Longitude: -90.0}
		require.False(t, InBounds(subject, view))

		got, moved := Recenter(view, subject)
		assert.True(t, moved)
		assert.Equal(t, subject, got.Center)
		assert.Equal(t, view.Zoom, got.Zoom)
	})
}
