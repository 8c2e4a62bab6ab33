package engine

import "github.com/rsinha/backfolio/internal/core"

// Ranker orders the securities that pass the screen. Rankings sort by the
// key descending; ties keep universe order (stable sort).
type Ranker interface {
	Name() string
	Key(f core.Fundamentals) float64
}

type byROCE struct{}

func (byROCE) Name() string                    { return "roce" }
func (byROCE) Key(f core.Fundamentals) float64 { return f.ROCE }

type byMarketCap struct{}

func (byMarketCap) Name() string                    { return "marketCap" }
func (byMarketCap) Key(f core.Fundamentals) float64 { return f.MarketCap }

// RankerFor maps a request's ranking logic to a Ranker, defaulting to ROCE.
func RankerFor(logic string) Ranker {
	switch logic {
	case "marketCap":
		return byMarketCap{}
	default:
		return byROCE{}
	}
}
