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

// Filter holds the fundamental screening thresholds for one period.
type Filter struct {
	MarketCapMin       float64
	MarketCapMax       float64
	ROCEMin            float64
	RequirePositivePAT bool
}

// Pass reports whether a snapshot survives the screen.
func (f Filter) Pass(fd core.Fundamentals) bool {
	if fd.MarketCap < f.MarketCapMin || fd.MarketCap > f.MarketCapMax {
		return false
	}
	if fd.ROCE < f.ROCEMin {
		return false
	}
	if f.RequirePositivePAT && fd.PAT <= 0 {
		return false
	}
	return true
}

// Selector screens and ranks a universe against fundamental data.
type Selector struct {
	fundamentals provider.Fundamentals
	logger       *zap.Logger
	workers      int
	timeout      time.Duration
}

// NewSelector creates a Selector. workers bounds the per-symbol fetch
// fan-out; timeout bounds each individual provider call.
func NewSelector(fundamentals provider.Fundamentals, logger *zap.Logger, workers int, timeout time.Duration) *Selector {
	if workers <= 0 {
		workers = 8
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Selector{
		fundamentals: fundamentals,
		logger:       logger,
		workers:      workers,
		timeout:      timeout,
	}
}

// Select fetches fundamentals for every symbol in the universe, applies the
// filter, ranks survivors by the ranker's key descending, and truncates to
// n. Symbols whose fetch fails are logged and excluded, never fatal. An
// empty result is ErrNoMatch.
func (s *Selector) Select(ctx context.Context, universe []string, filter Filter, ranker Ranker, n int) (Selection, error) {
	snapshots := make([]*core.Fundamentals, len(universe))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, symbol := range universe {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			fd, err := s.fundamentals.Fundamentals(cctx, symbol)
			if err != nil {
				s.logger.Warn("fundamentals unavailable, excluding symbol",
					zap.String("symbol", symbol), zap.Error(err))
				return nil
			}
			snapshots[i] = &fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var passed Selection
	for _, fd := range snapshots {
		if fd == nil {
			continue
		}
		if filter.Pass(*fd) {
			passed = append(passed, *fd)
		}
	}

	// Stable keeps universe order for equal keys.
	sort.SliceStable(passed, func(i, j int) bool {
		return ranker.Key(passed[i]) > ranker.Key(passed[j])
	})

	if len(passed) > n {
		passed = passed[:n]
	}
	if len(passed) == 0 {
		return nil, core.ErrNoMatch
	}
	return passed, nil
}
