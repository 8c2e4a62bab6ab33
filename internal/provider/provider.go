// Package provider defines the narrow data-source interfaces the engine
// consumes, plus the Yahoo Finance implementation and a SQLite-backed
// caching decorator.
package provider

import (
	"context"
	"time"

	"github.com/rsinha/backfolio/internal/core"
)

// Fundamentals supplies a screening snapshot for one symbol, valid for the
// evaluation day. Implementations return an error when the symbol has no
// usable data; the engine treats that as "symbol unavailable this period".
type Fundamentals interface {
	Fundamentals(ctx context.Context, symbol string) (core.Fundamentals, error)
}

// PriceHistory supplies daily closes for one symbol over [start, end].
// An empty series is a valid answer, not an error.
type PriceHistory interface {
	PriceHistory(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error)
}
