package enrich

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

func obsWithTemp(temp int) domain.WeatherObservation {
	return domain.WeatherObservation{TemperatureF: temp, Source: domain.SourceLive}
}

func TestWeatherCache_HitAndMiss(t *testing.T) {
	c := newWeatherCache(10, time.Minute, clockwork.NewFakeClock())

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", obsWithTemp(68))
	got, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 68, got.TemperatureF)
}

func TestWeatherCache_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newWeatherCache(10, time.Minute, clock)

	c.put("a", obsWithTemp(68))

	clock.Advance(59 * time.Second)
	_, ok := c.get("a")
	assert.True(t, ok, "entry inside the freshness window")

	clock.Advance(2 * time.Second)
	_, ok = c.get("a")
	assert.False(t, ok, "entry past the freshness window")

	// A re-put restores the entry with a fresh window.
	c.put("a", obsWithTemp(70))
	got, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 70, got.TemperatureF)
}

func TestWeatherCache_LRUEviction(t *testing.T) {
	c := newWeatherCache(3, time.Hour, clockwork.NewFakeClock())

	for i := range 3 {
		c.put(fmt.Sprintf("k%d", i), obsWithTemp(60+i))
	}

	// Touch k0 so k1 becomes the least recently used.
	_, ok := c.get("k0")
	require.True(t, ok)

	c.put("k3", obsWithTemp(63))

	_, ok = c.get("k1")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = c.get("k0")
	assert.True(t, ok)
	_, ok = c.get("k2")
	assert.True(t, ok)
	_, ok = c.get("k3")
	assert.True(t, ok)
}

func TestWeatherCache_PutExistingRefreshes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newWeatherCache(10, time.Minute, clock)

	c.put("a", obsWithTemp(68))
	clock.Advance(45 * time.Second)
	c.put("a", obsWithTemp(69))
	clock.Advance(45 * time.Second)

	got, ok := c.get("a")
	require.True(t, ok, "freshness window restarts on overwrite")
	assert.Equal(t, 69, got.TemperatureF)
}
