/*
cache.go - Time-boxed cache for capacity analytics

PURPOSE:
  Monthly utilization, project FTE and average-load answers are pure
  functions of the ledger, the calendar and master data. They are cached
  for a short TTL so dashboards do not rescan the ledger on every refresh.

INVALIDATION:
  The cache subscribes to the Notifier and drops everything on any change
  event. A generation counter guards the window between reading the ledger
  and storing the answer: a value computed before an invalidation is
  discarded instead of cached.

JANITOR:
  Start launches a goroutine that evicts expired entries every interval;
  Stop ends it and waits for it to exit. Expired entries are never served
  even without the janitor.

SEE ALSO:
  - events.go: Notifier
  - capacity.go: the cached computations
*/
package staffing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type cacheEntry struct {
	value   any
	expires time.Time
}

type AnalyticsCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	entries    map[string]cacheEntry
	generation uint64
	now        func() time.Time
	metrics    *cacheMetrics
	logger     *slog.Logger

	runMu  sync.Mutex
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewAnalyticsCache builds a cache; a ttl <= 0 disables caching. reg may be nil.
func NewAnalyticsCache(ttl time.Duration, reg prometheus.Registerer, logger *slog.Logger) *AnalyticsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
		metrics: newCacheMetrics(reg),
		logger:  logger.With("component", "analytics-cache"),
	}
}

// SetClock replaces the time source used for expiry.
func (c *AnalyticsCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Enabled reports whether values are retained at all.
func (c *AnalyticsCache) Enabled() bool { return c.ttl > 0 }

// Get returns a live entry.
func (c *AnalyticsCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		c.metrics.misses.Inc()
		return nil, false
	}
	c.metrics.hits.Inc()
	return e.value, true
}

// Generation identifies the current invalidation epoch.
func (c *AnalyticsCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// PutIfCurrent stores value unless the cache was invalidated after gen was read.
func (c *AnalyticsCache) PutIfCurrent(gen uint64, key string, value any) bool {
	if !c.Enabled() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
	return true
}

// Invalidate drops every entry and starts a new generation.
func (c *AnalyticsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries = make(map[string]cacheEntry)
	c.metrics.invalidated.Inc()
}

// OnChange is the Notifier handler.
func (c *AnalyticsCache) OnChange(evt ChangeEvent) {
	c.Invalidate()
}

func (c *AnalyticsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep evicts expired entries and returns how many were removed.
func (c *AnalyticsCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}
	c.metrics.evictions.Add(float64(removed))
	return removed
}

// Start runs the janitor. Calling Start twice is a no-op.
func (c *AnalyticsCache) Start(interval time.Duration) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.ticker != nil || interval <= 0 || !c.Enabled() {
		return
	}

	c.ticker = time.NewTicker(interval)
	c.stop = make(chan struct{})
	c.wg.Add(1)
	go c.run(c.ticker, c.stop)

	c.logger.Info("janitor started", "interval", interval, "ttl", c.ttl)
}

// Stop ends the janitor and waits for it.
func (c *AnalyticsCache) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.stop)
	c.wg.Wait()
	c.ticker = nil
	c.logger.Info("janitor stopped")
}

func (c *AnalyticsCache) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer c.wg.Done()
	for {
		select {
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("evicted expired entries", "count", n)
			}
		case <-stop:
			return
		}
	}
}

// cached serves key from c or computes and stores it.
func cached[T any](c *AnalyticsCache, key string, compute func() (T, error)) (T, error) {
	if c == nil || !c.Enabled() {
		return compute()
	}
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	gen := c.Generation()
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.PutIfCurrent(gen, key, v)
	return v, nil
}
