package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nice-weather-discovery/internal/adapter/httpapi"
	"github.com/couchcryptid/nice-weather-discovery/internal/adapter/kvstore"
	"github.com/couchcryptid/nice-weather-discovery/internal/adapter/poistore"
	"github.com/couchcryptid/nice-weather-discovery/internal/discovery"
	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
	"github.com/couchcryptid/nice-weather-discovery/internal/enrich"
	"github.com/couchcryptid/nice-weather-discovery/internal/locate"
	"github.com/couchcryptid/nice-weather-discovery/internal/observability"
)

type noopSink struct{}

func (noopSink) OnCandidates([]domain.EnrichedCandidate) {}
func (noopSink) OnViewport(domain.ViewportState)         {}
func (noopSink) OnStatus(discovery.Status)               {}

type stubProvider struct{}

func (stubProvider) CurrentConditions(context.Context, domain.Coordinate) (domain.ProviderReport, error) {
	return domain.ProviderReport{TemperatureF: 70, ConditionCode: "Clear", WindSpeedMPH: 5}, nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestEngine(t *testing.T) *discovery.Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(context.Background(), "state:user-location",
		`{"latitude":46.7296,"longitude":-94.6859,"method":"geolocation"}`))

	store := poistore.NewMemory([]poistore.MemoryPOI{
		{
			PointOfInterest: domain.PointOfInterest{
				ID:   "itasca",
				Name: "Itasca State Park",
				Coordinate: domain.Coordinate{
					Latitude: 47.1919, Longitude: -95.2061,
				},
				Category: "state_park",
			},
			Importance: 9,
		},
	})

	resolver := locate.New(kv, nil, logger, metrics)
	enricher := enrich.New(stubProvider{}, enrich.Options{}, logger, metrics)
	return discovery.New(resolver, store, enricher, kv, noopSink{}, discovery.Options{
		Debounce: 5 * time.Millisecond,
	}, logger, metrics)
}

func newTestServer(t *testing.T, infra map[string]httpapi.Pinger) (*httpapi.Server, *discovery.Engine) {
	t.Helper()
	engine := newTestEngine(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpapi.NewServer(":0", engine, infra, logger), engine
}

func startAndSettle(t *testing.T, engine *discovery.Engine) {
	t.Helper()
	engine.Start(context.Background(), "")
	require.Eventually(t, func() bool {
		return engine.CheckReadiness(context.Background()) == nil
	}, 2*time.Second, 5*time.Millisecond)
}

func do(srv *httpapi.Server, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzBeforeFirstCycle(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyzAfterFirstCycle(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	startAndSettle(t, engine)

	rec := do(srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCandidatesSnapshot(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	startAndSettle(t, engine)

	rec := do(srv, http.MethodGet, "/api/candidates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap discovery.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, discovery.StatusSettled, snap.Status)
	require.Len(t, snap.Candidates, 1)
	assert.Equal(t, "itasca", snap.Candidates[0].ID)
	assert.Equal(t, domain.SourceLive, snap.Candidates[0].Weather.Source)
	assert.Equal(t, domain.MethodGeolocation, snap.Location.Method)
}

func TestInfrastructureStatus(t *testing.T) {
	t.Run("all dependencies reachable", func(t *testing.T) {
		srv, _ := newTestServer(t, map[string]httpapi.Pinger{
			"postgres": stubPinger{},
			"redis":    stubPinger{},
		})

		rec := do(srv, http.MethodGet, "/api/infrastructure", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["postgres"])
		assert.Equal(t, "ok", body["redis"])
	})

	t.Run("unreachable dependency reported", func(t *testing.T) {
		srv, _ := newTestServer(t, map[string]httpapi.Pinger{
			"redis": stubPinger{err: errors.New("connection refused")},
		})

		rec := do(srv, http.MethodGet, "/api/infrastructure", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["redis"], "unreachable")
	})
}

func TestPostLocation(t *testing.T) {
	t.Run("valid device location accepted", func(t *testing.T) {
		srv, engine := newTestServer(t, nil)
		startAndSettle(t, engine)

		rec := do(srv, http.MethodPost, "/api/location", `{"latitude":44.9778,"longitude":-93.2650}`)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		var state domain.UserLocationState
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
		assert.Equal(t, domain.MethodGeolocation, state.Method)
		assert.InDelta(t, 44.9778, state.Coordinate.Latitude, 1e-9)
	})

	t.Run("out-of-range latitude rejected", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(srv, http.MethodPost, "/api/location", `{"latitude":123,"longitude":0}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(srv, http.MethodPost, "/api/location", `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPostLocationFromIP(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(srv, http.MethodPost, "/api/location/ip", "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var state domain.UserLocationState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, domain.MethodGeolocation, state.Method, "persisted location short-circuits the chain")
}

func TestPostPreferences(t *testing.T) {
	t.Run("valid preferences accepted", func(t *testing.T) {
		srv, engine := newTestServer(t, nil)
		startAndSettle(t, engine)

		rec := do(srv, http.MethodPost, "/api/preferences", `{"temperature":"cold","wind":"calm"}`)

		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("unknown preference value rejected", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(srv, http.MethodPost, "/api/preferences", `{"temperature":"freezing"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty selections are valid", func(t *testing.T) {
		srv, engine := newTestServer(t, nil)
		startAndSettle(t, engine)

		rec := do(srv, http.MethodPost, "/api/preferences", `{}`)

		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}

func TestPostNavigate(t *testing.T) {
	t.Run("closer at the boundary reports at-closest", func(t *testing.T) {
		srv, engine := newTestServer(t, nil)
		startAndSettle(t, engine)

		rec := do(srv, http.MethodPost, "/api/navigate", `{"direction":"closer"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "at-closest", body["outcome"])
	})

	t.Run("farther past the end reports no-more-results", func(t *testing.T) {
		srv, engine := newTestServer(t, nil)
		startAndSettle(t, engine)

		rec := do(srv, http.MethodPost, "/api/navigate", `{"direction":"farther"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "no-more-results", body["outcome"])
	})

	t.Run("unknown direction rejected", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(srv, http.MethodPost, "/api/navigate", `{"direction":"sideways"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
