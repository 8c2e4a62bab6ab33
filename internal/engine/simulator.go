package engine

import (
	"sort"
	"time"

	"github.com/rsinha/backfolio/internal/core"
)

// FillPolicy controls how a constituent missing a quote on a trading day
// contributes to that day's aggregate value.
type FillPolicy string

const (
	// FillZero contributes nothing on missing days. The aggregate
	// undercounts when a constituent's data is sparse; this is the
	// documented default approximation.
	FillZero FillPolicy = "zero"

	// FillCarry carries the last observed value forward onto missing days.
	FillCarry FillPolicy = "carry"
)

// PeriodResult is the output of simulating one rebalance period.
type PeriodResult struct {
	// Values is the aggregate daily portfolio value, dates ascending.
	Values []ValuePoint
	// Logs holds one row per symbol per observed day, in selection order.
	Logs []LogRow
}

// EndingCapital is the portfolio value on the period's last trading day.
func (p PeriodResult) EndingCapital() float64 {
	return p.Values[len(p.Values)-1].Value
}

// Simulate buys the selection at period-start prices and rolls share counts
// forward across the period. For each symbol, the buy price is the first
// available close; shares = capital x weight / buy price, fixed for the
// whole period. Symbols with no price data are skipped without error; if
// every symbol is empty the period fails with ErrNoPriceData.
func Simulate(selection Selection, weights []float64, capital float64, prices map[string]core.PriceSeries, policy FillPolicy) (PeriodResult, error) {
	type holding struct {
		symbol string
		shares float64
		series core.PriceSeries
	}

	var holdings []holding
	var logs []LogRow
	for i, f := range selection {
		series := prices[f.Symbol]
		if series.Empty() {
			continue
		}
		buyPrice := series.First().Close
		if buyPrice <= 0 {
			continue
		}
		investment := capital * weights[i]
		shares := investment / buyPrice
		holdings = append(holdings, holding{symbol: f.Symbol, shares: shares, series: series})

		for _, p := range series {
			logs = append(logs, LogRow{
				Date:       p.Date,
				Symbol:     f.Symbol,
				Close:      p.Close,
				Weight:     weights[i],
				Investment: investment,
				Shares:     shares,
				Value:      shares * p.Close,
			})
		}
	}
	if len(holdings) == 0 {
		return PeriodResult{}, core.ErrNoPriceData
	}

	// Union of trading days across all holdings.
	daySet := make(map[time.Time]struct{})
	for _, h := range holdings {
		for _, p := range h.series {
			daySet[p.Date] = struct{}{}
		}
	}
	days := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	values := make([]ValuePoint, len(days))
	for i, d := range days {
		values[i] = ValuePoint{Date: d}
	}
	for _, h := range holdings {
		idx := 0
		lastValue := 0.0
		for i, d := range days {
			if idx < len(h.series) && h.series[idx].Date.Equal(d) {
				lastValue = h.shares * h.series[idx].Close
				idx++
			} else if policy != FillCarry {
				continue
			}
			values[i].Value += lastValue
		}
	}

	return PeriodResult{Values: values, Logs: logs}, nil
}
