// Package engine implements the periodic-rebalancing backtest simulation:
// rebalance scheduling, per-period screening and ranking, weight
// allocation, share-based valuation roll-forward, capital chaining across
// periods, and whole-history performance metrics.
package engine

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rsinha/backfolio/internal/core"
	"github.com/rsinha/backfolio/internal/provider"
)

// Options tune the engine's fetch fan-out and fill behavior.
type Options struct {
	// Workers bounds concurrent per-symbol provider calls within a period.
	Workers int
	// ProviderTimeout bounds each individual provider call.
	ProviderTimeout time.Duration
	// FillPolicy is the default aggregation policy when a request does not
	// choose one.
	FillPolicy FillPolicy
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = 10 * time.Second
	}
	if o.FillPolicy == "" {
		o.FillPolicy = FillZero
	}
	return o
}

// Engine drives backtests over a fixed universe against data providers.
type Engine struct {
	universe []string
	selector *Selector
	prices   provider.PriceHistory
	logger   *zap.Logger
	opts     Options
}

// New creates an Engine over the given universe and providers.
func New(universe []string, fundamentals provider.Fundamentals, prices provider.PriceHistory, logger *zap.Logger, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		universe: universe,
		selector: NewSelector(fundamentals, logger, opts.Workers, opts.ProviderTimeout),
		prices:   prices,
		logger:   logger,
		opts:     opts,
	}
}

// Run executes one backtest request to completion. Periods run strictly in
// sequence: each period's starting capital is the prior period's closing
// value. Any structural failure (empty selection, no price data, empty
// concatenated series, degenerate date math) aborts the whole request and
// discards partial results.
func (e *Engine) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	boundaries, err := Schedule(req.StartDate, req.EndDate, req.Frequency)
	if err != nil {
		return nil, err
	}

	filter := Filter{
		MarketCapMin:       req.MarketCapMin,
		MarketCapMax:       req.MarketCapMax,
		ROCEMin:            req.ROCEMin,
		RequirePositivePAT: req.RequirePositivePAT,
	}
	ranker := RankerFor(req.RankingLogic)
	policy := req.FillPolicy
	if policy == "" {
		policy = e.opts.FillPolicy
	}

	var (
		series []ValuePoint
		logs   []LogRow
		closes = make(map[string]closePair)
	)

	capital := req.Capital
	for i := 0; i < len(boundaries)-1; i++ {
		periodStart, periodEnd := boundaries[i], boundaries[i+1]
		if !periodEnd.After(periodStart) {
			continue // zero-length trailing period
		}

		selection, err := e.selector.Select(ctx, e.universe, filter, ranker, req.PortfolioSize)
		if err != nil {
			return nil, err
		}
		weights := Allocate(selection, req.SizingMethod)

		prices, err := e.fetchPrices(ctx, selection.Symbols(), periodStart, periodEnd)
		if err != nil {
			return nil, err
		}

		period, err := Simulate(selection, weights, capital, prices, policy)
		if err != nil {
			return nil, err
		}

		e.logger.Debug("period simulated",
			zap.String("start", core.DayString(periodStart)),
			zap.String("end", core.DayString(periodEnd)),
			zap.Int("selected", len(selection)),
			zap.Float64("capital_in", capital),
			zap.Float64("capital_out", period.EndingCapital()))

		capital = period.EndingCapital()
		series = append(series, period.Values...)
		logs = append(logs, period.Logs...)
		trackCloses(closes, prices)
	}

	series = dedupeSorted(series)
	report, err := Analyze(series, closes)
	if err != nil {
		return nil, err
	}
	report.Logs = logs
	return report, nil
}

// fetchPrices fans out per-symbol history fetches with a bounded worker
// pool and waits for every result. A failed fetch leaves the symbol without
// data for the period; it is logged, never fatal.
func (e *Engine) fetchPrices(ctx context.Context, symbols []string, start, end time.Time) (map[string]core.PriceSeries, error) {
	results := make([]core.PriceSeries, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, symbol := range symbols {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, e.opts.ProviderTimeout)
			defer cancel()

			series, err := e.prices.PriceHistory(cctx, symbol, start, end)
			if err != nil {
				e.logger.Warn("price history unavailable for period",
					zap.String("symbol", symbol), zap.Error(err))
				return nil
			}
			results[i] = normalizeSeries(series)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prices := make(map[string]core.PriceSeries, len(symbols))
	for i, symbol := range symbols {
		prices[symbol] = results[i]
	}
	return prices, nil
}

// normalizeSeries truncates dates to calendar days and drops duplicates,
// keeping the first close seen for a day.
func normalizeSeries(series core.PriceSeries) core.PriceSeries {
	out := make(core.PriceSeries, 0, len(series))
	var prev time.Time
	for _, p := range series {
		d := core.Day(p.Date)
		if len(out) > 0 && !d.After(prev) {
			continue
		}
		out = append(out, core.PricePoint{Date: d, Close: p.Close})
		prev = d
	}
	return out
}

// trackCloses extends each symbol's observed close range with this period's
// data. Total returns are later computed over the symbol's own range, not
// the portfolio range. A non-positive opening close cannot anchor a return,
// so the symbol stays untracked until a period opens with a real quote.
func trackCloses(closes map[string]closePair, prices map[string]core.PriceSeries) {
	for symbol, series := range prices {
		if series.Empty() {
			continue
		}
		pair, seen := closes[symbol]
		if !seen {
			if series.First().Close <= 0 {
				continue
			}
			pair.first = series.First().Close
		}
		pair.last = series.Last().Close
		closes[symbol] = pair
	}
}

// dedupeSorted sorts the concatenated period values by date and keeps the
// first occurrence of each day. Period boundaries overlap by construction,
// so consecutive periods repeat the boundary day.
func dedupeSorted(values []ValuePoint) []ValuePoint {
	sorted := make([]ValuePoint, len(values))
	copy(sorted, values)
	// Stable so the earlier period's value wins on a shared boundary day.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := sorted[:0]
	for _, v := range sorted {
		if len(out) > 0 && out[len(out)-1].Date.Equal(v.Date) {
			continue
		}
		out = append(out, v)
	}
	return out
}
