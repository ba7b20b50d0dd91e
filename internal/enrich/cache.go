package enrich

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// weatherCache is a thread-safe LRU cache of weather observations with a
// freshness window. Entries past their TTL are treated as absent so the
// enricher re-fetches them.
type weatherCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*cacheEntry
	head    *cacheEntry // most recently used
	tail    *cacheEntry // least recently used
}

type cacheEntry struct {
	key      string
	value    domain.WeatherObservation
	storedAt time.Time
	prev     *cacheEntry
	next     *cacheEntry
}

func newWeatherCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *weatherCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &weatherCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*cacheEntry),
	}
}

func (c *weatherCache) get(key string) (domain.WeatherObservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.WeatherObservation{}, false
	}
	if c.clock.Since(e.storedAt) > c.ttl {
		delete(c.entries, key)
		c.remove(e)
		return domain.WeatherObservation{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *weatherCache) put(key string, value domain.WeatherObservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = c.clock.Now()
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, value: value, storedAt: c.clock.Now()}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *weatherCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *weatherCache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *weatherCache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *weatherCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
