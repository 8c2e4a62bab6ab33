package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chartBody(ts []int64, closes []float64) string {
	tsJSON, closeJSON := "", ""
	for i := range ts {
		if i > 0 {
			tsJSON += ","
			closeJSON += ","
		}
		tsJSON += fmt.Sprintf("%d", ts[i])
		closeJSON += fmt.Sprintf("%g", closes[i])
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`, tsJSON, closeJSON)
}

func TestClient_PriceHistory(t *testing.T) {
	base := time.Date(2021, 1, 4, 9, 15, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/RELIANCE.NS" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, chartBody(
			[]int64{base.Unix(), base.AddDate(0, 0, 1).Unix()},
			[]float64{1900.5, 1925.25},
		))
	}))
	defer srv.Close()

	c := New(Config{ChartURL: srv.URL, Suffix: ".NS"})
	series, err := c.PriceHistory(context.Background(), "RELIANCE", base, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("PriceHistory() error = %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len(series) = %d, want 2", len(series))
	}
	if series[0].Close != 1900.5 {
		t.Errorf("first close = %v, want 1900.5", series[0].Close)
	}
	if got := series[0].Date.Format("2006-01-02"); got != "2021-01-04" {
		t.Errorf("first date = %s, want 2021-01-04 (day-truncated)", got)
	}
}

func TestClient_PriceHistory_SkipsNullCloses(t *testing.T) {
	base := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%d,%d],"indicators":{"quote":[{"close":[null,100]}]}}],"error":null}}`,
			base.Unix(), base.AddDate(0, 0, 1).Unix())
	}))
	defer srv.Close()

	c := New(Config{ChartURL: srv.URL})
	series, err := c.PriceHistory(context.Background(), "TCS", base, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("PriceHistory() error = %v", err)
	}
	if len(series) != 1 || series[0].Close != 100 {
		t.Errorf("series = %v, want single close of 100", series)
	}
}

func TestClient_Fundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"price":{"marketCap":{"raw":1500000}},
			"financialData":{"returnOnEquity":{"raw":0.18}},
			"defaultKeyStatistics":{"netIncomeToCommon":{"raw":420}}
		}],"error":null}}`)
	}))
	defer srv.Close()

	c := New(Config{SummaryURL: srv.URL, Suffix: ".NS"})
	fd, err := c.Fundamentals(context.Background(), "INFY")
	if err != nil {
		t.Fatalf("Fundamentals() error = %v", err)
	}
	if fd.MarketCap != 1500000 {
		t.Errorf("MarketCap = %v, want 1500000", fd.MarketCap)
	}
	if fd.ROCE != 18 {
		t.Errorf("ROCE = %v, want 18 (percent)", fd.ROCE)
	}
	if fd.PAT != 420 {
		t.Errorf("PAT = %v, want 420", fd.PAT)
	}
}

func TestClient_Fundamentals_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	c := New(Config{SummaryURL: srv.URL})
	if _, err := c.Fundamentals(context.Background(), "NOPE"); err == nil {
		t.Error("Fundamentals() should fail when the API returns no result")
	}
}

func TestClient_RetriesOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"price":{"marketCap":{"raw":10}},"financialData":{},"defaultKeyStatistics":{}}],"error":null}}`)
	}))
	defer srv.Close()

	c := New(Config{SummaryURL: srv.URL, RetryAttempts: 3})
	fd, err := c.Fundamentals(context.Background(), "RETRY")
	if err != nil {
		t.Fatalf("Fundamentals() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if fd.MarketCap != 10 {
		t.Errorf("MarketCap = %v, want 10", fd.MarketCap)
	}
}

func TestValidateSymbol(t *testing.T) {
	for _, ok := range []string{"RELIANCE", "M&M", "BAJAJ-AUTO", "TCS.NS", "0700.HK"} {
		if err := validateSymbol(ok); err != nil {
			t.Errorf("validateSymbol(%s) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []string{"", "../etc", "SYM BOL", "AVERYLONGSYMBOLNAME"} {
		if err := validateSymbol(bad); err == nil {
			t.Errorf("validateSymbol(%s) = nil, want error", bad)
		}
	}
}
