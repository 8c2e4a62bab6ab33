package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rsinha/backfolio/internal/core"
)

func series(start time.Time, closes ...float64) core.PriceSeries {
	out := make(core.PriceSeries, len(closes))
	for i, c := range closes {
		out[i] = core.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestSimulate_FlatPriceHoldsCapital(t *testing.T) {
	sel := Selection{{Symbol: "FLAT", MarketCap: 1, ROCE: 1}}
	prices := map[string]core.PriceSeries{
		"FLAT": series(day(2021, 1, 1), 250, 250, 250, 250, 250),
	}

	got, err := Simulate(sel, []float64{1}, 100000, prices, FillZero)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if len(got.Values) != 5 {
		t.Fatalf("len(Values) = %d, want 5", len(got.Values))
	}
	for _, v := range got.Values {
		if math.Abs(v.Value-100000) > 1e-6 {
			t.Errorf("value on %v = %v, want 100000", v.Date, v.Value)
		}
	}
}

func TestSimulate_FixedShares(t *testing.T) {
	sel := Selection{{Symbol: "UP", MarketCap: 1, ROCE: 1}}
	prices := map[string]core.PriceSeries{
		"UP": series(day(2021, 1, 1), 100, 110, 120),
	}

	got, err := Simulate(sel, []float64{1}, 1000, prices, FillZero)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	// 10 shares bought at 100, held fixed.
	want := []float64{1000, 1100, 1200}
	for i, v := range got.Values {
		if math.Abs(v.Value-want[i]) > 1e-9 {
			t.Errorf("value[%d] = %v, want %v", i, v.Value, want[i])
		}
	}
	if got.EndingCapital() != 1200 {
		t.Errorf("EndingCapital() = %v, want 1200", got.EndingCapital())
	}
}

func TestSimulate_EmptySymbolSkipped(t *testing.T) {
	sel := Selection{
		{Symbol: "HAS", MarketCap: 1, ROCE: 1},
		{Symbol: "NONE", MarketCap: 1, ROCE: 1},
	}
	prices := map[string]core.PriceSeries{
		"HAS":  series(day(2021, 1, 1), 50, 55),
		"NONE": {},
	}

	got, err := Simulate(sel, []float64{0.5, 0.5}, 1000, prices, FillZero)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	// Only HAS contributes: 500 invested, 10 shares.
	if math.Abs(got.Values[0].Value-500) > 1e-9 {
		t.Errorf("first value = %v, want 500", got.Values[0].Value)
	}
	if math.Abs(got.Values[1].Value-550) > 1e-9 {
		t.Errorf("second value = %v, want 550", got.Values[1].Value)
	}
}

func TestSimulate_NoPriceData(t *testing.T) {
	sel := Selection{{Symbol: "NONE", MarketCap: 1, ROCE: 1}}
	_, err := Simulate(sel, []float64{1}, 1000, map[string]core.PriceSeries{"NONE": {}}, FillZero)
	if !errors.Is(err, core.ErrNoPriceData) {
		t.Errorf("Simulate() error = %v, want ErrNoPriceData", err)
	}
}

func TestSimulate_FillPolicies(t *testing.T) {
	sel := Selection{
		{Symbol: "FULL", MarketCap: 1, ROCE: 1},
		{Symbol: "GAPPY", MarketCap: 1, ROCE: 1},
	}
	start := day(2021, 1, 1)
	prices := map[string]core.PriceSeries{
		"FULL": series(start, 100, 100, 100),
		"GAPPY": {
			{Date: start, Close: 100},
			{Date: start.AddDate(0, 0, 2), Close: 100}, // missing middle day
		},
	}

	zero, err := Simulate(sel, []float64{0.5, 0.5}, 1000, prices, FillZero)
	if err != nil {
		t.Fatalf("Simulate(zero) error = %v", err)
	}
	// Middle day undercounts by GAPPY's 500.
	if math.Abs(zero.Values[1].Value-500) > 1e-9 {
		t.Errorf("zero-fill middle value = %v, want 500", zero.Values[1].Value)
	}

	carry, err := Simulate(sel, []float64{0.5, 0.5}, 1000, prices, FillCarry)
	if err != nil {
		t.Fatalf("Simulate(carry) error = %v", err)
	}
	if math.Abs(carry.Values[1].Value-1000) > 1e-9 {
		t.Errorf("carry-forward middle value = %v, want 1000", carry.Values[1].Value)
	}
}

func TestSimulate_LogRows(t *testing.T) {
	sel := Selection{{Symbol: "LOG", MarketCap: 1, ROCE: 1}}
	prices := map[string]core.PriceSeries{
		"LOG": series(day(2021, 1, 1), 200, 210),
	}

	got, err := Simulate(sel, []float64{1}, 1000, prices, FillZero)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if len(got.Logs) != 2 {
		t.Fatalf("len(Logs) = %d, want 2", len(got.Logs))
	}
	first := got.Logs[0]
	if first.Symbol != "LOG" || first.Close != 200 || first.Investment != 1000 {
		t.Errorf("unexpected first log row: %+v", first)
	}
	if math.Abs(first.Shares-5) > 1e-9 || math.Abs(first.Value-1000) > 1e-9 {
		t.Errorf("shares/value = %v/%v, want 5/1000", first.Shares, first.Value)
	}
}
