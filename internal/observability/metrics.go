package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// discovery engine.
type Metrics struct {
	CyclesTotal *prometheus.CounterVec // labels: outcome={settled,superseded,error}
	EngineReady prometheus.Gauge

	// Weather enrichment metrics.
	EnrichmentsTotal *prometheus.CounterVec // labels: source={live,cached,fallback}
	WeatherCache     *prometheus.CounterVec // labels: result={hit,miss}
	ProviderDuration prometheus.Histogram

	// Location and filtering metrics.
	LocationResolutions *prometheus.CounterVec // labels: method={geolocation,ip,none}
	FilterKeptRatio     prometheus.Histogram
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_discovery",
			Name:      "cycles_total",
			Help:      "Discovery cycles by outcome.",
		}, []string{"outcome"}),
		EngineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poi_discovery",
			Name:      "engine_ready",
			Help:      "1 once the engine has completed a discovery cycle.",
		}),
		EnrichmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_discovery",
			Name:      "enrichments_total",
			Help:      "Per-candidate weather enrichments by observation source.",
		}, []string{"source"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_discovery",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		ProviderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poi_discovery",
			Name:      "provider_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		LocationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_discovery",
			Name:      "location_resolutions_total",
			Help:      "Location resolutions by winning method.",
		}, []string{"method"}),
		FilterKeptRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poi_discovery",
			Name:      "filter_kept_ratio",
			Help:      "Fraction of enriched candidates surviving comfort filtering.",
			Buckets:   []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1},
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.EngineReady,
		m.EnrichmentsTotal,
		m.WeatherCache,
		m.ProviderDuration,
		m.LocationResolutions,
		m.FilterKeptRatio,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CyclesTotal:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_discovery", Name: "cycles_total"}, []string{"outcome"}),
		EngineReady:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "poi_discovery", Name: "engine_ready"}),
		EnrichmentsTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_discovery", Name: "enrichments_total"}, []string{"source"}),
		WeatherCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_discovery", Name: "weather_cache_total"}, []string{"result"}),
		ProviderDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "poi_discovery", Name: "provider_duration_seconds"}),
		LocationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_discovery", Name: "location_resolutions_total"}, []string{"method"}),
		FilterKeptRatio:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "poi_discovery", Name: "filter_kept_ratio"}),
	}
}
