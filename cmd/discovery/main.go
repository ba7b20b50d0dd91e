package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/nice-weather-discovery/internal/adapter/geoip"
	"github.com/couchcryptid/nice-weather-discovery/internal/adapter/httpapi"
	"github.com/couchcryptid/nice-weather-discovery/internal/adapter/kvstore"
	"github.com/couchcryptid/nice-weather-discovery/internal/adapter/openweather"
	"github.com/couchcryptid/nice-weather-discovery/internal/adapter/poistore"
	"github.com/couchcryptid/nice-weather-discovery/internal/config"
	"github.com/couchcryptid/nice-weather-discovery/internal/discovery"
	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
	"github.com/couchcryptid/nice-weather-discovery/internal/enrich"
	"github.com/couchcryptid/nice-weather-discovery/internal/locate"
	"github.com/couchcryptid/nice-weather-discovery/internal/observability"
)

// logSink reports cycle output through the service logger; consumers pull
// the actual snapshot over HTTP.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) OnCandidates(candidates []domain.EnrichedCandidate) {
	s.logger.Debug("candidates updated", "count", len(candidates))
}

func (s logSink) OnViewport(view domain.ViewportState) {
	s.logger.Debug("viewport updated", "zoom", view.Zoom)
}

func (s logSink) OnStatus(status discovery.Status) {
	s.logger.Debug("status changed", "status", status)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra := make(map[string]httpapi.Pinger)

	// Candidate store: Postgres when configured, in-memory otherwise.
	var store domain.CandidateStore
	if cfg.DatabaseURL != "" {
		pg, err := poistore.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := pg.Close(); err != nil {
				logger.Error("postgres close error", "error", err)
			}
		}()
		store = pg
		infra["postgres"] = pg
		logger.Info("using postgres candidate store")
	} else {
		store = poistore.NewMemory(nil)
		logger.Warn("DATABASE_URL not set, using empty in-memory candidate store")
	}

	// Session state: Redis when configured, in-memory otherwise.
	var kv domain.KeyValueStore
	if cfg.RedisAddr != "" {
		rdb := kvstore.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("redis close error", "error", err)
			}
		}()
		kv = rdb
		infra["redis"] = rdb
		logger.Info("using redis session state", "addr", cfg.RedisAddr)
	} else {
		kv = kvstore.NewMemory()
		logger.Warn("REDIS_ADDR not set, session state will not survive restarts")
	}

	// IP geolocation is optional; without a database the resolution chain
	// skips straight from persisted state to the default region.
	var ip domain.IPLocator
	if cfg.GeoIPDBPath != "" {
		locator, err := geoip.Open(cfg.GeoIPDBPath)
		if err != nil {
			logger.Error("failed to open geoip database", "error", err, "path", cfg.GeoIPDBPath)
			os.Exit(1)
		}
		defer func() {
			if err := locator.Close(); err != nil {
				logger.Error("geoip close error", "error", err)
			}
		}()
		ip = locator
		logger.Info("ip geolocation enabled", "path", cfg.GeoIPDBPath)
	} else {
		logger.Info("ip geolocation disabled")
	}

	provider := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, logger)
	enricher := enrich.New(provider, enrich.Options{
		CacheSize: cfg.WeatherCacheSize,
		CacheTTL:  cfg.WeatherCacheTTL,
		Timeout:   cfg.WeatherTimeout,
	}, logger, metrics)
	resolver := locate.New(kv, ip, logger, metrics)

	engine := discovery.New(resolver, store, enricher, kv, logSink{logger: logger}, discovery.Options{
		Debounce:       cfg.DebounceInterval,
		CandidateLimit: cfg.CandidateLimit,
	}, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, engine, infra, logger)

	// Bind the engine's lifetime context before any request can reach it;
	// a request-scoped Start must never become the lifetime context.
	engine.Start(ctx, "")

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("discovery service started", "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
