// Package export renders the per-symbol transaction log as downloadable
// CSV and XLSX artifacts.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/rsinha/backfolio/internal/core"
	"github.com/rsinha/backfolio/internal/engine"
)

// Artifact names under which the exporter persists the log.
const (
	CSVArtifact  = "portfolio_logs.csv"
	XLSXArtifact = "portfolio_logs.xlsx"
)

var header = []string{"Date", "Symbol", "Close", "Weight", "Investment", "Shares", "Value"}

// CSV renders the log rows as CSV with a header row.
func CSV(rows []engine.LogRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			core.DayString(r.Date),
			r.Symbol,
			formatFloat(r.Close),
			formatFloat(r.Weight),
			formatFloat(r.Investment),
			formatFloat(r.Shares),
			formatFloat(r.Value),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// XLSX renders the log rows as a single-sheet spreadsheet.
func XLSX(rows []engine.LogRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Portfolio Logs"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	for i, r := range rows {
		values := []any{core.DayString(r.Date), r.Symbol, r.Close, r.Weight, r.Investment, r.Shares, r.Value}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
