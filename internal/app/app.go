// Package app wires the configured stores, price history source, energy
// model cache and projection engine together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thermogain/thermogain/internal/config"
	"github.com/thermogain/thermogain/internal/metrics"
	"github.com/thermogain/thermogain/internal/pricecache"
	"github.com/thermogain/thermogain/internal/pricehistory"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/internal/store"
	"github.com/thermogain/thermogain/internal/store/postgres"
	"go.uber.org/zap"
)

// App holds the long-lived components built from a configuration.
type App struct {
	Cache   *pricecache.Cache
	Engine  *projection.Engine
	Models  store.ModelStore
	Results store.ResultStore
	Metrics *metrics.Metrics

	db *sql.DB
}

// Option customizes New.
type Option func(*options)

type options struct {
	metrics *metrics.Metrics
	clock   func() time.Time
}

// WithMetrics records cache and calculation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock overrides the clock used for model freshness.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// New builds the application. Energy models listed in the configuration are
// stored when the store has none for their energy type, then every model is
// loaded and refreshed when stale. Energy types left without a model are
// logged; calculations needing them fail with pricecache.ErrModelMissing.
func New(ctx context.Context, logger *zap.Logger, conf *config.Configuration, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		return nil, errors.New("app: nil configuration")
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Metrics: o.metrics}
	if conf.Database.DSN != "" {
		db, err := postgres.Open(ctx, conf.Database.DSN)
		if err != nil {
			return nil, err
		}
		if conf.Database.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		a.db = db
		a.Models = postgres.NewModelStore(db)
		a.Results = postgres.NewResultStore(db)
		logger.Info("using postgres storage", zap.String("op", "app.New"))
	} else {
		a.Models = store.NewMemoryModelStore()
		a.Results = store.NewMemoryResultStore()
		logger.Info("using in-memory storage", zap.String("op", "app.New"))
	}

	source, err := NewSource(conf.PriceHistory)
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := seedModels(ctx, logger, a.Models, conf.EnergyModels, o.clock()); err != nil {
		a.Close()
		return nil, err
	}

	a.Cache = pricecache.New(logger, a.Models, source,
		pricecache.WithParams(conf.Engine.ToParams()),
		pricecache.WithFreshnessDays(conf.Engine.FreshnessDays),
		pricecache.WithClock(o.clock),
		pricecache.WithMetrics(o.metrics),
	)
	models, err := a.Cache.Init(ctx, nil)
	if err != nil {
		logger.Warn("some energy models are unavailable",
			zap.String("op", "app.New"),
			zap.Int("loaded", len(models)),
			zap.Error(err),
		)
	}

	a.Engine = projection.NewEngine(logger, a.Cache, conf.Engine.ToOptions())
	return a, nil
}

// NewSource returns the configured price history source, or nil when none is
// configured. A file takes precedence over a URL.
func NewSource(cfg config.PriceHistoryConfig) (pricehistory.Source, error) {
	switch {
	case cfg.File != "":
		source, err := pricehistory.NewFileSource(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("price history file: %w", err)
		}
		return source, nil
	case cfg.URL != "":
		var opts []pricehistory.HTTPOption
		if cfg.Timeout > 0 {
			opts = append(opts, pricehistory.WithTimeout(cfg.Timeout))
		}
		source, err := pricehistory.NewHTTPSource(cfg.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("price history url: %w", err)
		}
		return source, nil
	default:
		return nil, nil
	}
}

func seedModels(ctx context.Context, logger *zap.Logger, modelStore store.ModelStore, seeds []config.ModelConfig, now time.Time) error {
	for i := range seeds {
		model, err := seeds[i].ToModel()
		if err != nil {
			return fmt.Errorf("energyModels[%d]: %w", i, err)
		}
		updatedAt, err := seeds[i].UpdatedTime(now)
		if err != nil {
			return err
		}

		_, err = modelStore.LoadModel(ctx, model.Energy)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load energy model %s: %w", model.Energy, err)
		}
		if err := modelStore.SaveModel(ctx, store.StoredModel{Model: model, UpdatedAt: updatedAt}); err != nil {
			return fmt.Errorf("seed energy model %s: %w", model.Energy, err)
		}
		logger.Debug("seeded energy model",
			zap.String("op", "app.seedModels"),
			zap.String("energy", string(model.Energy)),
			zap.Time("updatedAt", updatedAt),
		)
	}
	return nil
}

// Close releases the database connection, if any.
func (a *App) Close() {
	if a != nil && a.db != nil {
		_ = a.db.Close()
	}
}
