package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rsinha/backfolio/internal/engine"
)

func sampleRows() []engine.LogRow {
	d := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	return []engine.LogRow{
		{Date: d, Symbol: "TCS", Close: 3200, Weight: 0.5, Investment: 50000, Shares: 15.625, Value: 50000},
		{Date: d.AddDate(0, 0, 1), Symbol: "TCS", Close: 3250, Weight: 0.5, Investment: 50000, Shares: 15.625, Value: 50781.25},
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleRows())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Date", "Symbol", "Close", "Weight", "Investment", "Shares", "Value"}, records[0])
	assert.Equal(t, "2021-01-04", records[1][0])
	assert.Equal(t, "TCS", records[1][1])
	assert.Equal(t, "3200", records[1][2])
	assert.Equal(t, "50781.25", records[2][6])
}

func TestCSV_EmptyLog(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleRows())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Portfolio Logs")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2021-01-04", rows[1][0])
	assert.Equal(t, "TCS", rows[1][1])
}
