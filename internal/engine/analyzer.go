package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/rsinha/backfolio/internal/core"
)

// sharpeAnnualization is the fixed sqrt(12) factor applied to the raw
// mean/stdev ratio. It assumes roughly monthly return observations and is
// kept constant regardless of the actual rebalance frequency.
var sharpeAnnualization = math.Sqrt(12)

// Returns computes day-over-day percent changes. The first element is 0:
// there is no prior value to change from.
func Returns(values []ValuePoint) []float64 {
	returns := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		returns[i] = values[i].Value/values[i-1].Value - 1
	}
	return returns
}

// CumulativeGrowth is the running product of (1 + return), starting at 1.
func CumulativeGrowth(returns []float64) []float64 {
	growth := make([]float64, len(returns))
	acc := 1.0
	for i, r := range returns {
		acc *= 1 + r
		growth[i] = acc
	}
	return growth
}

// CAGR computes the compound annual growth rate over the series, with years
// measured as elapsed days / 365. A zero or negative span is
// ErrDegenerateRange.
func CAGR(values []ValuePoint) (float64, error) {
	first, last := values[0], values[len(values)-1]
	years := last.Date.Sub(first.Date).Hours() / 24 / 365
	if years <= 0 {
		return 0, core.WrapError(core.ErrDegenerateRange,
			fmt.Errorf("%s to %s", core.DayString(first.Date), core.DayString(last.Date)))
	}
	return math.Pow(last.Value/first.Value, 1/years) - 1, nil
}

// Sharpe computes mean(returns)/stdev(returns) x sqrt(12) over the
// observations after the first (which is not a real return). Sample
// standard deviation; zero or undefined volatility yields 0.
func Sharpe(returns []float64) float64 {
	if len(returns) < 3 {
		return 0
	}
	obs := returns[1:]

	mean := 0.0
	for _, r := range obs {
		mean += r
	}
	mean /= float64(len(obs))

	variance := 0.0
	for _, r := range obs {
		variance += (r - mean) * (r - mean)
	}
	stdev := math.Sqrt(variance / float64(len(obs)-1))
	if stdev == 0 || math.IsNaN(stdev) {
		return 0
	}
	return mean / stdev * sharpeAnnualization
}

// Drawdowns computes growth[t]/max(growth[0..t]) - 1 for every day.
func Drawdowns(growth []float64) []float64 {
	drawdowns := make([]float64, len(growth))
	peak := math.Inf(-1)
	for i, g := range growth {
		if g > peak {
			peak = g
		}
		drawdowns[i] = g/peak - 1
	}
	return drawdowns
}

// closePair tracks a symbol's first and last observed closes across the run.
type closePair struct {
	first float64
	last  float64
}

// rankSymbols sorts per-symbol total returns descending and returns the top
// and bottom three. With fewer than six symbols the lists may overlap.
func rankSymbols(closes map[string]closePair) (winners, losers []SymbolReturn) {
	ranked := make([]SymbolReturn, 0, len(closes))
	for symbol, c := range closes {
		ranked = append(ranked, SymbolReturn{
			Symbol:    symbol,
			ReturnPct: round2((c.last - c.first) / c.first * 100),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ReturnPct != ranked[j].ReturnPct {
			return ranked[i].ReturnPct > ranked[j].ReturnPct
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	top := min(3, len(ranked))
	winners = ranked[:top]
	losers = ranked[max(0, len(ranked)-3):]
	return winners, losers
}

// Analyze computes the whole-history report from the deduplicated,
// date-sorted portfolio series and the per-symbol close ranges.
func Analyze(values []ValuePoint, closes map[string]closePair) (*Report, error) {
	if len(values) == 0 {
		return nil, core.ErrEmptySeries
	}

	cagr, err := CAGR(values)
	if err != nil {
		return nil, err
	}

	returns := Returns(values)
	growth := CumulativeGrowth(returns)
	drawdowns := Drawdowns(growth)

	maxDD := 0.0
	for _, dd := range drawdowns {
		if dd < maxDD {
			maxDD = dd
		}
	}

	equity := make([]EquityPoint, len(values))
	ddCurve := make([]DrawdownPoint, len(values))
	for i, v := range values {
		equity[i] = EquityPoint{Date: v.Date, CumulativeGrowth: growth[i]}
		ddCurve[i] = DrawdownPoint{
			Date:        v.Date,
			DrawdownPct: round2(drawdowns[i] * 100),
			ReturnPct:   round2(returns[i] * 100),
		}
	}

	winners, losers := rankSymbols(closes)

	return &Report{
		Metrics: Metrics{
			CAGR:        round2(cagr * 100),
			SharpeRatio: round2(Sharpe(returns)),
			MaxDrawdown: round2(maxDD * 100),
		},
		Winners:     winners,
		Losers:      losers,
		EquityCurve: equity,
		Drawdown:    ddCurve,
	}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
