// Package viewport computes map center/zoom from the candidate set and
// reconciles on-map markers incrementally as candidates change.
package viewport

import (
	"math"
	"sort"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

const (
	minZoom = 8
	maxZoom = 18

	// paddingFactor widens the bounding span so markers sit inside the
	// viewport edges rather than on them.
	paddingFactor = 1.1

	// maxFocusCandidates caps how many nearest candidates the bounding view
	// must contain alongside the user.
	maxFocusCandidates = 5
)

// ComputeView selects the optimal center and zoom for the current candidate
// set. user is nil when no meaningful position exists (method "none").
func ComputeView(candidates []domain.EnrichedCandidate, user *domain.Coordinate) domain.ViewportState {
	if len(candidates) == 0 {
		if user != nil {
			return domain.ViewportState{Center: *user, Zoom: domain.DefaultZoom}
		}
		return domain.ViewportState{Center: domain.DefaultCenter, Zoom: domain.DefaultZoom}
	}

	if user != nil {
		points := make([]domain.Coordinate, 0, maxFocusCandidates+1)
		points = append(points, *user)
		for _, c := range nearestOf(candidates, *user, maxFocusCandidates) {
			points = append(points, c.Coordinate)
		}
		return boundingView(points)
	}

	points := make([]domain.Coordinate, len(candidates))
	for i, c := range candidates {
		points[i] = c.Coordinate
	}
	return boundingView(points)
}

// nearestOf returns up to n candidates closest to the origin.
func nearestOf(candidates []domain.EnrichedCandidate, origin domain.Coordinate, n int) []domain.EnrichedCandidate {
	sorted := make([]domain.EnrichedCandidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		return domain.Distance(origin, sorted[i].Coordinate) < domain.Distance(origin, sorted[j].Coordinate)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// boundingView centers on the midpoint of the points and picks the largest
// zoom whose visible span still covers the padded bounding box.
func boundingView(points []domain.Coordinate) domain.ViewportState {
	minLat, maxLat := points[0].Latitude, points[0].Latitude
	minLon, maxLon := points[0].Longitude, points[0].Longitude
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.Latitude)
		maxLat = math.Max(maxLat, p.Latitude)
		minLon = math.Min(minLon, p.Longitude)
		maxLon = math.Max(maxLon, p.Longitude)
	}

	center := domain.Coordinate{
		Latitude:  (minLat + maxLat) / 2,
		Longitude: (minLon + maxLon) / 2,
	}

	latZoom := zoomForSpan((maxLat-minLat)*paddingFactor, 180)
	lonZoom := zoomForSpan((maxLon-minLon)*paddingFactor, 360)
	zoom := min(latZoom, lonZoom)

	return domain.ViewportState{Center: center, Zoom: clampZoom(zoom)}
}

// zoomForSpan returns the largest zoom level whose world-fraction window
// still contains a span of the given degrees.
func zoomForSpan(spanDegrees, worldDegrees float64) int {
	if spanDegrees <= 0 {
		return maxZoom
	}
	return int(math.Floor(math.Log2(worldDegrees / spanDegrees)))
}

func clampZoom(zoom int) int {
	if zoom < minZoom {
		return minZoom
	}
	if zoom > maxZoom {
		return maxZoom
	}
	return zoom
}

// visibleSpan returns the latitude and longitude degrees covered at a zoom
// level, matching zoomForSpan's window model.
func visibleSpan(zoom int) (latSpan, lonSpan float64) {
	scale := math.Pow(2, float64(zoom))
	return 180 / scale, 360 / scale
}

// InBounds reports whether a point is inside the view's currently visible
// bounds.
func InBounds(point domain.Coordinate, view domain.ViewportState) bool {
	latSpan, lonSpan := visibleSpan(view.Zoom)
	return math.Abs(point.Latitude-view.Center.Latitude) <= latSpan/2 &&
		math.Abs(point.Longitude-view.Center.Longitude) <= lonSpan/2
}

// Recenter returns a view centered on the subject only when it falls outside
// the current visible bounds, avoiding camera movement when the subject is
// already visible.
func Recenter(view domain.ViewportState, subject domain.Coordinate) (domain.ViewportState, bool) {
	if InBounds(subject, view) {
		return view, false
	}
	return domain.ViewportState{Center: subject, Zoom: view.Zoom}, true
}
