package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rsinha/backfolio/internal/core"
	"github.com/rsinha/backfolio/internal/store"
)

// Observer receives cache and upstream call outcomes.
type Observer interface {
	RecordCacheLookup(kind, result string)
	RecordProviderRequest(kind, status string)
}

// Cached is a cache-aside decorator over both provider interfaces.
// Fundamentals are fresh for one calendar day; prices are served from the
// cache whenever any rows exist for the requested range. Cache write
// failures are logged and otherwise ignored.
type Cached struct {
	fundamentals Fundamentals
	prices       PriceHistory
	store        *store.Store
	logger       *zap.Logger
	observer     Observer
	now          func() time.Time
}

// NewCached wraps the given providers with the SQLite cache.
func NewCached(fundamentals Fundamentals, prices PriceHistory, st *store.Store, logger *zap.Logger) *Cached {
	return &Cached{
		fundamentals: fundamentals,
		prices:       prices,
		store:        st,
		logger:       logger,
		now:          time.Now,
	}
}

// WithObserver attaches an outcome observer and returns the decorator.
func (c *Cached) WithObserver(obs Observer) *Cached {
	c.observer = obs
	return c
}

func (c *Cached) observeCache(kind, result string) {
	if c.observer != nil {
		c.observer.RecordCacheLookup(kind, result)
	}
}

func (c *Cached) observeUpstream(kind string, err error) {
	if c.observer == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.observer.RecordProviderRequest(kind, status)
}

// Fundamentals serves today's snapshot from the cache when present,
// otherwise fetches and stores it.
func (c *Cached) Fundamentals(ctx context.Context, symbol string) (core.Fundamentals, error) {
	today := core.Day(c.now())

	fd, found, err := c.store.Fundamentals(ctx, symbol, today)
	if err != nil {
		c.logger.Warn("fundamentals cache read failed", zap.String("symbol", symbol), zap.Error(err))
	} else if found {
		c.observeCache("fundamentals", "hit")
		return fd, nil
	}
	c.observeCache("fundamentals", "miss")

	fd, err = c.fundamentals.Fundamentals(ctx, symbol)
	c.observeUpstream("fundamentals", err)
	if err != nil {
		return core.Fundamentals{}, err
	}
	if err := c.store.PutFundamentals(ctx, fd, today); err != nil {
		c.logger.Warn("fundamentals cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return fd, nil
}

// PriceHistory serves the range from the cache when it holds any rows for
// it, otherwise fetches and stores the upstream series.
func (c *Cached) PriceHistory(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error) {
	cached, err := c.store.Prices(ctx, symbol, start, end)
	if err != nil {
		c.logger.Warn("price cache read failed", zap.String("symbol", symbol), zap.Error(err))
	} else if !cached.Empty() {
		c.observeCache("prices", "hit")
		return cached, nil
	}
	c.observeCache("prices", "miss")

	series, err := c.prices.PriceHistory(ctx, symbol, start, end)
	c.observeUpstream("prices", err)
	if err != nil {
		return nil, err
	}
	if !series.Empty() {
		if err := c.store.PutPrices(ctx, symbol, series); err != nil {
			c.logger.Warn("price cache write failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return series, nil
}
