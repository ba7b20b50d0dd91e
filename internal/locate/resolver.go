// Package locate resolves the user's position through an ordered fallback
// chain: persisted state, then IP-based lookup, then a fixed regional
// default. Each tier is a pure function returning a tagged result; the first
// success wins. Resolution never blocks the caller on failure and never
// surfaces an error to the user.
package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
	"github.com/couchcryptid/nice-weather-discovery/internal/observability"
)

const locationKey = "state:user-location"

// tierResult is the tagged outcome of one resolution tier.
type tierResult struct {
	state  domain.UserLocationState
	ok     bool
	reason string
}

type tier struct {
	name string
	run  func(ctx context.Context) tierResult
}

// Resolver determines the active user coordinate and persists how it was
// obtained.
type Resolver struct {
	kv      domain.KeyValueStore
	ip      domain.IPLocator // nil when no GeoIP database is configured
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Resolver. ip may be nil; the IP tier then always fails
// silently.
func New(kv domain.KeyValueStore, ip domain.IPLocator, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{kv: kv, ip: ip, logger: logger, metrics: metrics}
}

// Resolve runs the tier chain once for session initialization. A persisted
// coordinate short-circuits without any network lookups. When every tier
// fails, the regional default stays active with promptPending set so the
// presentation layer can invite a manual repositioning.
func (r *Resolver) Resolve(ctx context.Context, clientIP string) domain.UserLocationState {
	tiers := []tier{
		{name: "persisted", run: r.persistedTier},
		{name: "ip", run: func(ctx context.Context) tierResult { return r.ipTier(ctx, clientIP) }},
	}

	state := r.firstSuccess(ctx, tiers)
	r.metrics.LocationResolutions.WithLabelValues(string(state.Method)).Inc()
	r.logger.Info("location resolved",
		"method", state.Method,
		"prompt_pending", state.PromptPending,
	)
	return state
}

// UseDeviceLocation applies a device geolocation result. User-gesture-gated
// by the caller; overrides every other tier and clears any pending prompt.
func (r *Resolver) UseDeviceLocation(ctx context.Context, coord domain.Coordinate) (domain.UserLocationState, error) {
	return r.override(ctx, coord)
}

// ManualOverride applies an explicit marker repositioning. Always valid,
// equivalent in precedence to device geolocation.
func (r *Resolver) ManualOverride(ctx context.Context, coord domain.Coordinate) (domain.UserLocationState, error) {
	return r.override(ctx, coord)
}

func (r *Resolver) override(ctx context.Context, coord domain.Coordinate) (domain.UserLocationState, error) {
	if err := coord.Validate(); err != nil {
		return domain.UserLocationState{}, fmt.Errorf("invalid coordinate: %w", err)
	}
	state := domain.UserLocationState{
		Coordinate: coord,
		Method:     domain.MethodGeolocation,
	}
	r.persist(ctx, state)
	r.metrics.LocationResolutions.WithLabelValues(string(state.Method)).Inc()
	return state, nil
}

func (r *Resolver) firstSuccess(ctx context.Context, tiers []tier) domain.UserLocationState {
	for _, t := range tiers {
		res := t.run(ctx)
		if res.ok {
			return res.state
		}
		r.logger.Debug("location tier failed", "tier", t.name, "reason", res.reason)
	}
	return domain.UserLocationState{
		Coordinate:    domain.DefaultCenter,
		Method:        domain.MethodNone,
		PromptPending: true,
	}
}

// persistedLocation is the stored shape of a resolved location.
type persistedLocation struct {
	Latitude  float64               `json:"latitude"`
	Longitude float64               `json:"longitude"`
	Method    domain.LocationMethod `json:"method"`
}

func (r *Resolver) persistedTier(ctx context.Context) tierResult {
	raw, err := r.kv.Get(ctx, locationKey)
	if err != nil {
		return tierResult{reason: err.Error()}
	}

	var stored persistedLocation
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return tierResult{reason: fmt.Sprintf("corrupt persisted location: %v", err)}
	}
	coord := domain.Coordinate{Latitude: stored.Latitude, Longitude: stored.Longitude}
	if err := coord.Validate(); err != nil {
		return tierResult{reason: fmt.Sprintf("persisted coordinate invalid: %v", err)}
	}
	if stored.Method != domain.MethodGeolocation && stored.Method != domain.MethodIP {
		return tierResult{reason: fmt.Sprintf("persisted method %q not usable", stored.Method)}
	}

	return tierResult{
		state: domain.UserLocationState{Coordinate: coord, Method: stored.Method},
		ok:    true,
	}
}

func (r *Resolver) ipTier(ctx context.Context, clientIP string) tierResult {
	if r.ip == nil {
		return tierResult{reason: "no ip locator configured"}
	}
	if clientIP == "" {
		return tierResult{reason: "no client ip available"}
	}

	coord, err := r.ip.Locate(clientIP)
	if err != nil {
		return tierResult{reason: err.Error()}
	}

	state := domain.UserLocationState{Coordinate: coord, Method: domain.MethodIP}
	r.persist(ctx, state)
	return tierResult{state: state, ok: true}
}

// persist writes the resolved location through the key-value port.
// Persistence failures are logged and swallowed: losing the write only costs
// a re-resolution next session.
func (r *Resolver) persist(ctx context.Context, state domain.UserLocationState) {
	stored := persistedLocation{
		Latitude:  state.Coordinate.Latitude,
		Longitude: state.Coordinate.Longitude,
		Method:    state.Method,
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		r.logger.Warn("marshal location state failed", "error", err)
		return
	}
	if err := r.kv.Set(ctx, locationKey, string(raw)); err != nil {
		r.logger.Warn("persist location state failed", "error", err)
	}
}
