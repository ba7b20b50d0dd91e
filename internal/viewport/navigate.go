package viewport

import (
	"errors"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// Sentinel outcomes for closer/farther navigation. These are terminal
// states, not failures: callers report them to the user instead of
// propagating.
var (
	ErrAtClosest     = errors.New("already at the closest result")
	ErrExpandSearch  = errors.New("expand the search radius for more results")
	ErrNoMoreResults = errors.New("no more results in this direction")
	ErrNoCandidates  = errors.New("no candidates to navigate")
)

// Navigator walks the distance-ordered candidate list one step at a time.
type Navigator struct {
	candidates []domain.EnrichedCandidate // ascending distance
	index      int
	canExpand  bool
}

// NewNavigator creates a navigator over an ascending-distance candidate
// list. canExpand selects whether exhausting the list signals a search
// expansion or a terminal end.
func NewNavigator(candidates []domain.EnrichedCandidate, canExpand bool) *Navigator {
	return &Navigator{candidates: candidates, canExpand: canExpand}
}

// Current returns the candidate at the pointer, or false when the list is
// empty.
func (n *Navigator) Current() (domain.EnrichedCandidate, bool) {
	if len(n.candidates) == 0 {
		return domain.EnrichedCandidate{}, false
	}
	return n.candidates[n.index], true
}

// Closer steps toward the nearest candidate. At the boundary it reports
// ErrAtClosest and stays put.
func (n *Navigator) Closer() (domain.EnrichedCandidate, error) {
	if len(n.candidates) == 0 {
		return domain.EnrichedCandidate{}, ErrNoCandidates
	}
	if n.index == 0 {
		return n.candidates[0], ErrAtClosest
	}
	n.index--
	return n.candidates[n.index], nil
}

// Farther steps toward the farthest loaded candidate. Past the end it
// reports ErrExpandSearch when expansion is available, ErrNoMoreResults
// otherwise, and stays put in both cases.
func (n *Navigator) Farther() (domain.EnrichedCandidate, error) {
	if len(n.candidates) == 0 {
		return domain.EnrichedCandidate{}, ErrNoCandidates
	}
	if n.index >= len(n.candidates)-1 {
		if n.canExpand {
			return n.candidates[n.index], ErrExpandSearch
		}
		return n.candidates[n.index], ErrNoMoreResults
	}
	n.index++
	return n.candidates[n.index], nil
}

// Replace swaps in a new candidate list, clamping the pointer so the
// navigator stays valid across discovery cycles.
func (n *Navigator) Replace(candidates []domain.EnrichedCandidate, canExpand bool) {
	n.candidates = candidates
	n.canExpand = canExpand
	if n.index >= len(candidates) {
		n.index = len(candidates) - 1
	}
	if n.index < 0 {
		n.index = 0
	}
}
