package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rsinha/backfolio/internal/core"
)

// Request describes one backtest run. It is immutable once submitted.
type Request struct {
	StartDate          time.Time
	EndDate            time.Time
	Frequency          core.Frequency
	PortfolioSize      int
	Capital            float64
	MarketCapMin       float64
	MarketCapMax       float64
	ROCEMin            float64
	RequirePositivePAT bool
	RankingLogic       string
	SizingMethod       core.SizingMethod
	FillPolicy         FillPolicy
}

// Validate rejects requests the engine cannot run.
func (r Request) Validate() error {
	if !r.EndDate.After(r.StartDate) {
		return core.ErrInvalidRange
	}
	if r.PortfolioSize <= 0 {
		return core.WrapError(core.ErrConfigInvalid, errPositive("portfolioSize"))
	}
	if r.Capital <= 0 {
		return core.WrapError(core.ErrConfigInvalid, errPositive("capital"))
	}
	return nil
}

// Selection is the ranked, truncated set of securities held for one period,
// ordered by the ranking key descending.
type Selection []core.Fundamentals

// Symbols returns the selection's symbols in ranked order.
func (s Selection) Symbols() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Symbol
	}
	return out
}

// ValuePoint is the aggregate portfolio value on one day.
type ValuePoint struct {
	Date  time.Time
	Value float64
}

// LogRow is one security's state on one day, the unit of the transaction
// log returned in responses and exported as CSV/XLSX artifacts.
type LogRow struct {
	Date       time.Time `json:"-"`
	Symbol     string    `json:"symbol"`
	Close      float64   `json:"close"`
	Weight     float64   `json:"weight"`
	Investment float64   `json:"investment"`
	Shares     float64   `json:"shares"`
	Value      float64   `json:"value"`
}

// Metrics holds the whole-history performance numbers. CAGR and MaxDrawdown
// are percentages rounded to two decimals; SharpeRatio is a plain ratio.
type Metrics struct {
	CAGR        float64 `json:"CAGR"`
	SharpeRatio float64 `json:"SharpeRatio"`
	MaxDrawdown float64 `json:"MaxDrawdown"`
}

// SymbolReturn is one security's total return over its observed date range.
type SymbolReturn struct {
	Symbol    string  `json:"symbol"`
	ReturnPct float64 `json:"returnPct"`
}

// EquityPoint is one day of the cumulative-growth curve.
type EquityPoint struct {
	Date             time.Time `json:"-"`
	CumulativeGrowth float64   `json:"cumulativeGrowth"`
}

// DrawdownPoint is one day of the drawdown curve.
type DrawdownPoint struct {
	Date        time.Time `json:"-"`
	DrawdownPct float64   `json:"drawdownPct"`
	ReturnPct   float64   `json:"returnPct"`
}

// MarshalJSON emits the row with its date as YYYY-MM-DD.
func (r LogRow) MarshalJSON() ([]byte, error) {
	type alias LogRow
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{core.DayString(r.Date), alias(r)})
}

// MarshalJSON emits the point with its date as YYYY-MM-DD.
func (p EquityPoint) MarshalJSON() ([]byte, error) {
	type alias EquityPoint
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{core.DayString(p.Date), alias(p)})
}

// MarshalJSON emits the point with its date as YYYY-MM-DD.
func (p DrawdownPoint) MarshalJSON() ([]byte, error) {
	type alias DrawdownPoint
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{core.DayString(p.Date), alias(p)})
}

func errPositive(field string) error {
	return fmt.Errorf("%s must be positive", field)
}

// Report is the complete result of a backtest run. Logs carries the full
// transaction log; callers truncate it for wire responses and hand the whole
// thing to the exporter.
type Report struct {
	Metrics     Metrics
	Winners     []SymbolReturn
	Losers      []SymbolReturn
	EquityCurve []EquityPoint
	Drawdown    []DrawdownPoint
	Logs        []LogRow
}
