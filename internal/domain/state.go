package domain

// LocationMethod records how the active user coordinate was obtained.
type LocationMethod string

const (
	MethodGeolocation LocationMethod = "geolocation"
	MethodIP          LocationMethod = "ip"
	MethodNone        LocationMethod = "none"
)

// DefaultCenter is the fixed regional fallback coordinate kept active when
// no persisted, IP-derived, or device location is available.
var DefaultCenter = Coordinate{Latitude: 46.7296, Longitude: -94.6859}

// DefaultZoom is the city-scale zoom used when centering on a single point.
const DefaultZoom = 11

// UserLocationState is the resolved user position plus how it was obtained.
// Persisted across sessions through the key-value port.
type UserLocationState struct {
	Coordinate    Coordinate     `json:"coordinate"`
	Method        LocationMethod `json:"method"`
	PromptPending bool           `json:"promptPending"`
}

// ViewportState is the map center and zoom computed by the viewport
// reconciler. Persisted the same way as UserLocationState.
type ViewportState struct {
	Center Coordinate `json:"center"`
	Zoom   int        `json:"zoom"`
}
