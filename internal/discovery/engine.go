// Package discovery composes location resolution, proximity queries, weather
// enrichment, comfort filtering, and viewport reconciliation into debounced
// end-to-end cycles.
//
// Cycles are triggered by user-visible events: initial load, location
// changes, preference changes. Rapid successive triggers collapse into one
// cycle through a debounce timer, and every cycle captures a version counter
// at start; a cycle whose version is stale by the time it completes discards
// its results instead of applying them, so the newest input always wins
// regardless of completion order.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
	"github.com/couchcryptid/nice-weather-discovery/internal/enrich"
	"github.com/couchcryptid/nice-weather-discovery/internal/locate"
	"github.com/couchcryptid/nice-weather-discovery/internal/observability"
	"github.com/couchcryptid/nice-weather-discovery/internal/viewport"
)

// Status is the cycle state reported to the presentation layer.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSettled Status = "settled"
	StatusError   Status = "error"
)

const (
	preferencesKey = "state:preferences"
	viewportKey    = "state:viewport"
)

// Sink receives per-cycle output. Implementations must not block; the engine
// calls them from its cycle goroutine.
type Sink interface {
	OnCandidates(candidates []domain.EnrichedCandidate)
	OnViewport(view domain.ViewportState)
	OnStatus(status Status)
}

// Options tunes engine behavior. Zero values select the defaults. Clock is
// only set by tests.
type Options struct {
	Debounce       time.Duration
	CandidateLimit int
	Clock          clockwork.Clock
}

// Engine runs the discovery cycle. All event entry points are safe for
// concurrent use; cycles themselves are serialized by the debounce and
// supersede policy.
type Engine struct {
	resolver *locate.Resolver
	store    domain.CandidateStore
	enricher *enrich.Enricher
	kv       domain.KeyValueStore
	sink     Sink
	logger   *slog.Logger
	metrics  *observability.Metrics

	clock    clockwork.Clock
	debounce time.Duration
	limit    int

	ctx     context.Context
	version atomic.Uint64
	ready   atomic.Bool

	mu         sync.Mutex
	timer      clockwork.Timer
	location   domain.UserLocationState
	prefs      domain.ComfortPreferences
	markers    *viewport.MarkerSet
	nav        *viewport.Navigator
	view       domain.ViewportState
	candidates []domain.EnrichedCandidate
	status     Status
}

// New creates an Engine. The sink is required; every other collaborator
// comes from its package constructor.
func New(resolver *locate.Resolver, store domain.CandidateStore, enricher *enrich.Enricher, kv domain.KeyValueStore, sink Sink, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = 25
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Engine{
		resolver: resolver,
		store:    store,
		enricher: enricher,
		kv:       kv,
		sink:     sink,
		logger:   logger,
		metrics:  metrics,
		clock:    opts.Clock,
		debounce: opts.Debounce,
		limit:    opts.CandidateLimit,
		markers:  viewport.NewMarkerSet(),
		nav:      viewport.NewNavigator(nil, false),
		status:   StatusLoading,
	}
}

// Start resolves the user location, restores persisted preferences and
// viewport, and schedules the initial discovery cycle. The first ctx passed
// becomes the engine's lifetime context and bounds all later cycles;
// repeated Starts (re-running the resolution chain for a new request) do
// not replace it.
func (e *Engine) Start(ctx context.Context, clientIP string) {
	state := e.resolver.Resolve(ctx, clientIP)

	e.mu.Lock()
	if e.ctx == nil {
		e.ctx = ctx
	}
	e.location = state
	e.prefs = e.loadPreferences(ctx)
	e.view = e.loadViewport(ctx, state)
	e.mu.Unlock()

	e.trigger()
}

// CheckReadiness returns nil once the engine has completed a discovery
// cycle.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("engine has not completed a discovery cycle yet")
	}
	return nil
}

// Location returns the current user location state.
func (e *Engine) Location() domain.UserLocationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.location
}

// Snapshot is the engine's current output for pull-based consumers.
type Snapshot struct {
	Candidates []domain.EnrichedCandidate `json:"candidates"`
	Viewport   domain.ViewportState       `json:"viewport"`
	Status     Status                     `json:"status"`
	Location   domain.UserLocationState   `json:"location"`
}

// CurrentSnapshot returns the last settled cycle's output.
func (e *Engine) CurrentSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Candidates: e.candidates,
		Viewport:   e.view,
		Status:     e.status,
		Location:   e.location,
	}
}

// UseDeviceLocation applies a device geolocation result and schedules a
// cycle. Invalid coordinates are rejected at this boundary.
func (e *Engine) UseDeviceLocation(ctx context.Context, coord domain.Coordinate) error {
	state, err := e.resolver.UseDeviceLocation(ctx, coord)
	if err != nil {
		return err
	}
	e.setLocation(state)
	return nil
}

// ManualOverride applies an explicit marker repositioning and schedules a
// cycle.
func (e *Engine) ManualOverride(ctx context.Context, coord domain.Coordinate) error {
	state, err := e.resolver.ManualOverride(ctx, coord)
	if err != nil {
		return err
	}
	e.setLocation(state)
	return nil
}

func (e *Engine) setLocation(state domain.UserLocationState) {
	e.mu.Lock()
	e.location = state
	e.mu.Unlock()
	e.trigger()
}

// SetPreferences replaces the comfort preferences, persists them, and
// schedules a cycle.
func (e *Engine) SetPreferences(ctx context.Context, prefs domain.ComfortPreferences) {
	e.mu.Lock()
	e.prefs = prefs
	e.mu.Unlock()

	raw, err := json.Marshal(prefs)
	if err == nil {
		if err := e.kv.Set(ctx, preferencesKey, string(raw)); err != nil {
			e.logger.Warn("persist preferences failed", "error", err)
		}
	}
	e.trigger()
}

// NavigateCloser steps the subject pointer toward the nearest candidate,
// re-centering the view only when the new subject is off-screen.
func (e *Engine) NavigateCloser() (domain.EnrichedCandidate, error) {
	return e.navigate(func(n *viewport.Navigator) (domain.EnrichedCandidate, error) {
		return n.Closer()
	})
}

// NavigateFarther steps the subject pointer away from the user. At the end
// of the loaded list it reports viewport.ErrExpandSearch or
// viewport.ErrNoMoreResults.
func (e *Engine) NavigateFarther() (domain.EnrichedCandidate, error) {
	return e.navigate(func(n *viewport.Navigator) (domain.EnrichedCandidate, error) {
		return n.Farther()
	})
}

func (e *Engine) navigate(step func(*viewport.Navigator) (domain.EnrichedCandidate, error)) (domain.EnrichedCandidate, error) {
	e.mu.Lock()
	candidate, err := step(e.nav)
	if err != nil {
		e.mu.Unlock()
		return candidate, err
	}

	view, moved := viewport.Recenter(e.view, candidate.Coordinate)
	e.view = view
	ctx := e.ctx
	e.mu.Unlock()

	if moved {
		if ctx != nil {
			e.persistViewport(ctx, view)
		}
		e.sink.OnViewport(view)
	}
	return candidate, nil
}

// trigger schedules a discovery cycle after the debounce window. Successive
// triggers within the window collapse into one cycle.
func (e *Engine) trigger() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil {
		e.timer.Reset(e.debounce)
		return
	}
	e.timer = e.clock.AfterFunc(e.debounce, func() {
		e.mu.Lock()
		e.timer = nil
		ctx := e.ctx
		e.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			return
		}
		e.runCycle(ctx)
	})
}

// runCycle executes one location -> proximity -> enrichment -> filter ->
// viewport pass. The version captured at entry detects supersession: if a
// newer cycle started while this one was in flight, its results are
// discarded.
func (e *Engine) runCycle(ctx context.Context) {
	v := e.version.Add(1)
	e.setStatus(StatusLoading)

	e.mu.Lock()
	loc := e.location
	prefs := e.prefs
	e.mu.Unlock()

	ranked, err := e.fetchCandidates(ctx, loc)
	if err != nil {
		// Total candidate-store failure is the only user-visible error
		// state; everything downstream degrades per candidate instead.
		// A stale failure must not clobber a newer cycle's output, so the
		// error path honors the same supersede check as the success path.
		e.mu.Lock()
		if e.version.Load() != v {
			e.mu.Unlock()
			e.logger.Debug("discarding superseded cycle failure", "cycle", v)
			e.metrics.CyclesTotal.WithLabelValues("superseded").Inc()
			return
		}
		e.status = StatusError
		e.mu.Unlock()
		e.sink.OnStatus(StatusError)
		e.logger.Error("candidate store unavailable", "error", err)
		e.metrics.CyclesTotal.WithLabelValues("error").Inc()
		return
	}

	enriched := e.enrichAll(ctx, ranked)
	filtered := domain.FilterByComfort(enriched, prefs)
	if len(enriched) > 0 {
		e.metrics.FilterKeptRatio.Observe(float64(len(filtered)) / float64(len(enriched)))
	}

	var user *domain.Coordinate
	if loc.Method != domain.MethodNone {
		user = &loc.Coordinate
	}
	view := viewport.ComputeView(filtered, user)

	e.mu.Lock()
	if e.version.Load() != v {
		e.mu.Unlock()
		e.logger.Debug("discarding superseded cycle results", "cycle", v)
		e.metrics.CyclesTotal.WithLabelValues("superseded").Inc()
		return
	}
	e.candidates = filtered
	e.view = view
	e.markers.Reconcile(filtered)
	e.nav.Replace(filtered, len(ranked) == e.limit)
	e.status = StatusSettled
	e.mu.Unlock()

	e.persistViewport(ctx, view)
	e.sink.OnCandidates(filtered)
	e.sink.OnViewport(view)
	e.sink.OnStatus(StatusSettled)

	e.ready.Store(true)
	e.metrics.EngineReady.Set(1)
	e.metrics.CyclesTotal.WithLabelValues("settled").Inc()
	e.logger.Info("discovery cycle settled",
		"cycle", v,
		"candidates", len(enriched),
		"kept", len(filtered),
		"method", loc.Method,
	)
}

// fetchCandidates queries by proximity when a meaningful user position
// exists, and by importance otherwise. Importance results still carry a
// distance from the active (default) coordinate so downstream ordering and
// navigation stay defined.
func (e *Engine) fetchCandidates(ctx context.Context, loc domain.UserLocationState) ([]domain.RankedPOI, error) {
	if loc.Method != domain.MethodNone {
		return e.store.NearestTo(ctx, loc.Coordinate, e.limit)
	}

	pois, err := e.store.AllByImportance(ctx, e.limit)
	if err != nil {
		return nil, err
	}
	ranked := make([]domain.RankedPOI, len(pois))
	for i, poi := range pois {
		ranked[i] = domain.RankedPOI{
			PointOfInterest: poi,
			DistanceMiles:   domain.Distance(loc.Coordinate, poi.Coordinate),
		}
	}
	return ranked, nil
}

// enrichAll fans out one enrichment per candidate and waits for all to
// settle. Enrich never fails, so every candidate comes back with either
// live, cached, or fallback weather.
func (e *Engine) enrichAll(ctx context.Context, ranked []domain.RankedPOI) []domain.EnrichedCandidate {
	enriched := make([]domain.EnrichedCandidate, len(ranked))
	var wg sync.WaitGroup
	for i, poi := range ranked {
		wg.Add(1)
		go func(i int, poi domain.RankedPOI) {
			defer wg.Done()
			enriched[i] = domain.EnrichedCandidate{
				RankedPOI: poi,
				Weather:   e.enricher.Enrich(ctx, poi.Coordinate),
			}
		}(i, poi)
	}
	wg.Wait()
	return enriched
}

func (e *Engine) setStatus(status Status) {
	e.mu.Lock()
	e.status = status
	e.mu.Unlock()
	e.sink.OnStatus(status)
}

func (e *Engine) loadPreferences(ctx context.Context) domain.ComfortPreferences {
	raw, err := e.kv.Get(ctx, preferencesKey)
	if err != nil {
		return domain.ComfortPreferences{}
	}
	var prefs domain.ComfortPreferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		e.logger.Warn("corrupt persisted preferences ignored", "error", err)
		return domain.ComfortPreferences{}
	}
	return prefs
}

func (e *Engine) loadViewport(ctx context.Context, loc domain.UserLocationState) domain.ViewportState {
	raw, err := e.kv.Get(ctx, viewportKey)
	if err != nil {
		return domain.ViewportState{Center: loc.Coordinate, Zoom: domain.DefaultZoom}
	}
	var view domain.ViewportState
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		e.logger.Warn("corrupt persisted viewport ignored", "error", err)
		return domain.ViewportState{Center: loc.Coordinate, Zoom: domain.DefaultZoom}
	}
	return view
}

func (e *Engine) persistViewport(ctx context.Context, view domain.ViewportState) {
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := e.kv.Set(ctx, viewportKey, string(raw)); err != nil {
		e.logger.Warn("persist viewport failed", "error", err)
	}
}
