package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsinha/backfolio/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Prices(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

	series := core.PriceSeries{
		{Date: base, Close: 100},
		{Date: base.AddDate(0, 0, 1), Close: 101.5},
		{Date: base.AddDate(0, 0, 2), Close: 99.25},
	}
	require.NoError(t, s.PutPrices(ctx, "TCS", series))

	got, err := s.Prices(ctx, "TCS", base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 100.0, got[0].Close)
	assert.True(t, got[0].Date.Equal(base))

	// Range queries clip to the requested window.
	got, err = s.Prices(ctx, "TCS", base.AddDate(0, 0, 1), base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 101.5, got[0].Close)

	// Unknown symbol yields an empty series, not an error.
	got, err = s.Prices(ctx, "UNKNOWN", base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_PricesOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.PutPrices(ctx, "INFY", core.PriceSeries{{Date: base, Close: 100}}))
	require.NoError(t, s.PutPrices(ctx, "INFY", core.PriceSeries{{Date: base, Close: 105}}))

	got, err := s.Prices(ctx, "INFY", base, base)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 105.0, got[0].Close)
}

func TestStore_Fundamentals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	today := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	fd := core.Fundamentals{Symbol: "RELIANCE", MarketCap: 1.5e12, ROCE: 11.2, PAT: 5e10}
	require.NoError(t, s.PutFundamentals(ctx, fd, today))

	got, found, err := s.Fundamentals(ctx, "RELIANCE", today)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, fd, got)

	// A different calendar day is a cache miss.
	_, found, err = s.Fundamentals(ctx, "RELIANCE", today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.Fundamentals(ctx, "MISSING", today)
	require.NoError(t, err)
	assert.False(t, found)
}
