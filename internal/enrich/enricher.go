// Package enrich attaches current weather observations to POI candidates
// using a cache-then-fetch-then-fallback strategy.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
	"github.com/couchcryptid/nice-weather-discovery/internal/observability"
)

// Enricher resolves a current-conditions observation for a coordinate.
// Safe for concurrent use: one discovery cycle enriches all candidates in
// parallel against the shared cache.
type Enricher struct {
	provider domain.WeatherProvider
	cache    *weatherCache
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Options tunes cache behavior and the per-call provider timeout. Zero
// values select the defaults. Clock is only set by tests.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Timeout   time.Duration
	Clock     clockwork.Clock
}

// New creates an Enricher around a weather provider.
func New(provider domain.WeatherProvider, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Enricher {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1000
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Enricher{
		provider: provider,
		cache:    newWeatherCache(opts.CacheSize, opts.CacheTTL, opts.Clock),
		timeout:  opts.Timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Enrich returns a weather observation for the coordinate. It never returns
// an error: provider failures of any kind degrade to the pleasant-weather
// fallback observation tagged SourceFallback.
func (e *Enricher) Enrich(ctx context.Context, at domain.Coordinate) domain.WeatherObservation {
	key := bucketKey(at)

	if obs, ok := e.cache.get(key); ok {
		e.metrics.WeatherCache.WithLabelValues("hit").Inc()
		e.metrics.EnrichmentsTotal.WithLabelValues(string(domain.SourceCached)).Inc()
		obs.Source = domain.SourceCached
		return obs
	}
	e.metrics.WeatherCache.WithLabelValues("miss").Inc()

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	report, err := e.provider.CurrentConditions(callCtx, at)
	e.metrics.ProviderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		e.logger.Warn("weather provider unavailable, using fallback",
			"lat", at.Latitude,
			"lon", at.Longitude,
			"error", err,
		)
		e.metrics.EnrichmentsTotal.WithLabelValues(string(domain.SourceFallback)).Inc()
		return domain.FallbackObservation()
	}

	obs := normalize(report)
	e.cache.put(key, obs)
	e.metrics.EnrichmentsTotal.WithLabelValues(string(domain.SourceLive)).Inc()
	return obs
}

// normalize converts a raw provider report into the engine's observation,
// deriving a precipitation chance when the provider omits one.
func normalize(report domain.ProviderReport) domain.WeatherObservation {
	condition := domain.NormalizeCondition(report.ConditionCode)

	precip := domain.PrecipChanceFor(condition)
	if report.PrecipChancePct != nil {
		precip = clampPct(*report.PrecipChancePct)
	}

	wind := int(math.Round(report.WindSpeedMPH))
	if wind < 0 {
		wind = 0
	}

	return domain.WeatherObservation{
		TemperatureF:    int(math.Round(report.TemperatureF)),
		Condition:       condition,
		PrecipChancePct: precip,
		WindSpeedMPH:    wind,
		Source:          domain.SourceLive,
		ObservedAt:      domain.Now(),
	}
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// bucketKey rounds the coordinate so nearby candidates share one cache
// entry and one provider call.
func bucketKey(c domain.Coordinate) string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}
