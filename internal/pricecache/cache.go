// Package pricecache owns the energy price models used by projections. Models
// are loaded from a store, refreshed from price history when stale, and
// served from memory.
package pricecache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/thermogain/thermogain/internal/metrics"
	"github.com/thermogain/thermogain/internal/pricehistory"
	"github.com/thermogain/thermogain/internal/store"
	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/datetime"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrModelMissing is returned when no model is cached for an energy type.
var ErrModelMissing = energyprice.ErrModelMissing

// Cache serves energy price models. It is safe for concurrent use.
type Cache struct {
	logger        *zap.Logger
	store         store.ModelStore
	source        pricehistory.Source
	params        energyprice.Params
	freshnessDays int
	now           func() time.Time
	metrics       *metrics.Metrics

	mu     sync.RWMutex
	models map[energy.Type]store.StoredModel
}

// Option configures a Cache.
type Option func(*Cache)

// WithParams overrides the history analysis parameters.
func WithParams(params energyprice.Params) Option {
	return func(c *Cache) { c.params = params }
}

// WithFreshnessDays sets the age after which a stored model is refreshed.
func WithFreshnessDays(days int) Option {
	return func(c *Cache) {
		if days > 0 {
			c.freshnessDays = days
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMetrics records refresh outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a cache over a model store and a price history source. Either
// may be nil: without a store models live only in memory, without a source
// stale models cannot be refreshed.
func New(logger *zap.Logger, modelStore store.ModelStore, source pricehistory.Source, opts ...Option) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		logger:        logger,
		store:         modelStore,
		source:        source,
		params:        energyprice.DefaultParams(),
		freshnessDays: constants.DefaultFreshnessDays,
		now:           time.Now,
		models:        make(map[energy.Type]store.StoredModel),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init loads the models of the given energy types, refreshing stale or
// missing ones in parallel. A stale model whose refresh fails is kept. The
// returned error joins the failures of energy types left without a model.
func (c *Cache) Init(ctx context.Context, fuels []energy.Type) (map[energy.Type]energyprice.Model, error) {
	if len(fuels) == 0 {
		fuels = energy.AllTypes()
	}

	var (
		errMu sync.Mutex
		errs  []error
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, fuel := range fuels {
		fuel := fuel
		g.Go(func() error {
			if err := c.load(gctx, fuel); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[energy.Type]energyprice.Model, len(fuels))
	c.mu.RLock()
	for _, fuel := range fuels {
		if m, ok := c.models[fuel]; ok {
			out[fuel] = m.Model
		}
	}
	c.mu.RUnlock()

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return out, errors.Join(errs...)
}

func (c *Cache) load(ctx context.Context, fuel energy.Type) error {
	stored, found, err := c.loadStored(ctx, fuel)
	if err != nil {
		c.logger.Warn("failed to load stored energy model",
			zap.String("op", "pricecache.Init"),
			zap.String("energy", string(fuel)),
			zap.Error(err),
		)
	}

	if found {
		age := datetime.DaysSince(stored.UpdatedAt, c.now())
		c.metrics.SetModelAge(fuel, age)
		if age <= c.freshnessDays {
			c.put(stored)
			return nil
		}
		c.logger.Info("energy model is stale",
			zap.String("op", "pricecache.Init"),
			zap.String("energy", string(fuel)),
			zap.Int("ageDays", age),
		)
	}

	if _, err := c.Refresh(ctx, fuel); err != nil {
		if found {
			c.logger.Warn("refresh failed, keeping stale energy model",
				zap.String("op", "pricecache.Init"),
				zap.String("energy", string(fuel)),
				zap.Error(err),
			)
			c.put(stored)
			return nil
		}
		return fmt.Errorf("%w for %s: %w", ErrModelMissing, fuel, err)
	}
	return nil
}

func (c *Cache) loadStored(ctx context.Context, fuel energy.Type) (store.StoredModel, bool, error) {
	if c.store == nil {
		return store.StoredModel{}, false, nil
	}
	stored, err := c.store.LoadModel(ctx, fuel)
	if errors.Is(err, store.ErrNotFound) {
		return store.StoredModel{}, false, nil
	}
	if err != nil {
		return store.StoredModel{}, false, err
	}
	return stored, true, nil
}

// Get returns the cached model of an energy type.
func (c *Cache) Get(fuel energy.Type) (energyprice.Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[fuel]
	if !ok {
		return energyprice.Model{}, fmt.Errorf("%w for %s", ErrModelMissing, fuel)
	}
	return m.Model, nil
}

// Refresh recomputes the model of an energy type from its price history,
// persists it and caches it.
func (c *Cache) Refresh(ctx context.Context, fuel energy.Type) (model energyprice.Model, err error) {
	defer func() { c.metrics.ObserveRefresh(fuel, err) }()

	if c.source == nil {
		return energyprice.Model{}, errors.New("no price history source configured")
	}
	points, err := c.source.History(ctx, fuel)
	if err != nil {
		return energyprice.Model{}, fmt.Errorf("failed to fetch price history: %w", err)
	}
	analysis, err := energyprice.AnalyzeHistory(fuel, points, c.params)
	if err != nil {
		return energyprice.Model{}, fmt.Errorf("failed to analyze price history: %w", err)
	}

	stored := store.StoredModel{Model: analysis.Model, UpdatedAt: c.now().UTC()}
	if c.store != nil {
		if err := c.store.SaveModel(ctx, stored); err != nil {
			return energyprice.Model{}, fmt.Errorf("failed to save energy model: %w", err)
		}
	}
	c.put(stored)
	c.metrics.SetModelAge(fuel, 0)

	c.logger.Info("energy model refreshed",
		zap.String("op", "pricecache.Refresh"),
		zap.String("energy", string(fuel)),
		zap.Float64("recentRate", analysis.Model.RecentRate),
		zap.Float64("equilibriumRate", analysis.Model.EquilibriumRate),
		zap.Int("completeYears", len(analysis.YearlyAverages)),
	)
	return analysis.Model, nil
}

// RefreshAll refreshes every given energy type in parallel and returns the
// first failure.
func (c *Cache) RefreshAll(ctx context.Context, fuels []energy.Type) error {
	if len(fuels) == 0 {
		fuels = energy.AllTypes()
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, fuel := range fuels {
		fuel := fuel
		g.Go(func() error {
			if _, err := c.Refresh(gctx, fuel); err != nil {
				return fmt.Errorf("refresh %s: %w", fuel, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Put caches a model directly.
func (c *Cache) Put(m energyprice.Model, updatedAt time.Time) error {
	if m.Energy == "" {
		return errors.New("energy model without energy type")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	c.put(store.StoredModel{Model: m, UpdatedAt: updatedAt})
	return nil
}

// Models returns the cached models ordered by energy type.
func (c *Cache) Models() []store.StoredModel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]store.StoredModel, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model.Energy < out[j].Model.Energy })
	return out
}

func (c *Cache) put(m store.StoredModel) {
	c.mu.Lock()
	c.models[m.Model.Energy] = m
	c.mu.Unlock()
}
