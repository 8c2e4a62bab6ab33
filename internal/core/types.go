package core

import "time"

// Frequency is the rebalance cadence of a backtest.
type Frequency string

const (
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyYearly    Frequency = "Yearly"
	FrequencyNone      Frequency = "None"
)

// StepMonths returns the calendar step of the frequency in months, or 0 for
// frequencies that do not step (the whole range becomes a single period).
func (f Frequency) StepMonths() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 0
	}
}

// SizingMethod selects how a ranked selection is converted into weights.
type SizingMethod string

const (
	SizingEqualWeight SizingMethod = "Equal Weight"
	SizingMarketCap   SizingMethod = "Market Cap Weighted"
	SizingROCE        SizingMethod = "ROCE Weighted"
)

// Fundamentals is a point-in-time screening snapshot for one security.
// ROCE is expressed in percent, PAT in absolute currency.
type Fundamentals struct {
	Symbol    string
	MarketCap float64
	ROCE      float64
	PAT       float64
}

// IsValid checks the snapshot carries the fields the screen depends on.
func (f Fundamentals) IsValid() bool {
	return f.Symbol != "" && f.MarketCap > 0
}

// PricePoint is one daily close for a security.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries is an ordered run of daily closes, dates strictly increasing.
type PriceSeries []PricePoint

// Empty reports whether the series has no observations.
func (s PriceSeries) Empty() bool { return len(s) == 0 }

// First returns the earliest observation. The series must be non-empty.
func (s PriceSeries) First() PricePoint { return s[0] }

// Last returns the latest observation. The series must be non-empty.
func (s PriceSeries) Last() PricePoint { return s[len(s)-1] }

// Day truncates a timestamp to its UTC calendar day. All prices and
// portfolio values are keyed by day, so every date entering the engine goes
// through here first.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayString formats a day as YYYY-MM-DD, the wire and storage format.
func DayString(t time.Time) string {
	return t.Format("2006-01-02")
}
