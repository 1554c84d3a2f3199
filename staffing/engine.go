/*
Package staffing schedules people onto projects day by day and answers
capacity, cost and best-fit questions over the resulting ledger.

COMPONENTS:
  WorkingCalendar     which days are working days for a location
  AllocationStore     the only writer of the per-day allocation ledger
  CostRateResolver    daily cost of a role on a date (history + fallback)
  CapacityAggregator  load, utilization, FTE and cost rollups
  BestFitMatcher      advisory ranking of candidates for a need
  Directory           master data and calendar writes

WIRING:
  Every writer publishes a ChangeEvent on the shared Notifier after its
  write commits. AnalyticsCache subscribes to it and drops cached answers,
  so reads never observe a result computed before the write.

Storage is any generic.TxStore: store.NewTxMemory for tests and demos,
store/sqlite for durable deployments.
*/
package staffing

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/warp/staffing-engine/generic"
)

// Config tunes the engine. The zero value is usable; DefaultConfig is what
// the server starts with.
type Config struct {
	// CacheTTL bounds how long analytics answers are reused. <= 0 disables
	// the cache.
	CacheTTL time.Duration
	// SweepInterval is how often expired cache entries are evicted.
	SweepInterval time.Duration

	Weights                  Weights
	AllowEquivalentSeniority bool

	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		CacheTTL:      5 * time.Minute,
		SweepInterval: time.Minute,
		Weights:       DefaultWeights(),
	}
}

// Engine bundles the components over one store.
type Engine struct {
	Store       generic.TxStore
	Notifier    *Notifier
	Cache       *AnalyticsCache
	Allocations *AllocationStore
	Rates       *CostRateResolver
	Capacity    *CapacityAggregator
	Matcher     *BestFitMatcher
	Directory   *Directory

	sweepInterval time.Duration
	subscription  SubscriberID
}

func New(store generic.TxStore, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("staffing engine needs a store")
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := newEngineMetrics(cfg.Registerer)
	notifier := NewNotifier(logger)
	cache := NewAnalyticsCache(cfg.CacheTTL, cfg.Registerer, logger)
	capacity := NewCapacityAggregator(store, cache, logger)

	e := &Engine{
		Store:         store,
		Notifier:      notifier,
		Cache:         cache,
		Allocations:   NewAllocationStore(store, notifier, metrics, logger),
		Rates:         NewCostRateResolver(store, notifier, logger),
		Capacity:      capacity,
		Matcher:       NewBestFitMatcher(store, capacity, cfg.Weights, cfg.AllowEquivalentSeniority, metrics, logger),
		Directory:     NewDirectory(store, notifier, logger),
		sweepInterval: cfg.SweepInterval,
	}
	e.subscription = notifier.Subscribe(cache.OnChange)
	return e, nil
}

// Start launches background maintenance (the cache janitor).
func (e *Engine) Start() {
	e.Cache.Start(e.sweepInterval)
}

// Stop ends background maintenance and detaches the cache.
func (e *Engine) Stop() {
	e.Cache.Stop()
	e.Notifier.Unsubscribe(e.subscription)
}
