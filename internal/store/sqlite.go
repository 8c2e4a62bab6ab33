// Package store persists fetched prices and fundamentals in SQLite so
// repeated backtests do not refetch the same data.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/rsinha/backfolio/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS prices (
	symbol TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (symbol, date)
);
CREATE TABLE IF NOT EXISTS fundamentals (
	symbol     TEXT NOT NULL,
	date       TEXT NOT NULL,
	market_cap REAL NOT NULL,
	roce       REAL NOT NULL,
	pat        REAL NOT NULL,
	PRIMARY KEY (symbol, date)
);
`

// Store is a SQLite-backed cache for prices and fundamentals. Prices are
// keyed by (symbol, day); fundamentals by (symbol, calendar day), matching
// the one-snapshot-per-day freshness model.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and ensures the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Prices returns the cached closes for symbol within [start, end], dates
// ascending. An empty series means nothing is cached for the range.
func (s *Store) Prices(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, close FROM prices WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date`,
		symbol, core.DayString(core.Day(start)), core.DayString(core.Day(end)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series core.PriceSeries
	for rows.Next() {
		var day string
		var closePrice float64
		if err := rows.Scan(&day, &closePrice); err != nil {
			return nil, err
		}
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("corrupt date %q for %s: %w", day, symbol, err)
		}
		series = append(series, core.PricePoint{Date: d, Close: closePrice})
	}
	return series, rows.Err()
}

// PutPrices upserts a symbol's series. Re-fetched days overwrite.
func (s *Store) PutPrices(ctx context.Context, symbol string, series core.PriceSeries) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO prices (symbol, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range series {
		if _, err := stmt.ExecContext(ctx, symbol, core.DayString(core.Day(p.Date)), p.Close); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Fundamentals returns the cached snapshot for symbol on the given day.
// The second return reports whether a snapshot was found.
func (s *Store) Fundamentals(ctx context.Context, symbol string, day time.Time) (core.Fundamentals, bool, error) {
	var fd core.Fundamentals
	fd.Symbol = symbol

	err := s.db.QueryRowContext(ctx,
		`SELECT market_cap, roce, pat FROM fundamentals WHERE symbol = ? AND date = ?`,
		symbol, core.DayString(core.Day(day))).Scan(&fd.MarketCap, &fd.ROCE, &fd.PAT)
	if err == sql.ErrNoRows {
		return core.Fundamentals{}, false, nil
	}
	if err != nil {
		return core.Fundamentals{}, false, err
	}
	return fd, true, nil
}

// PutFundamentals upserts a snapshot for the given day.
func (s *Store) PutFundamentals(ctx context.Context, fd core.Fundamentals, day time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO fundamentals (symbol, date, market_cap, roce, pat) VALUES (?, ?, ?, ?, ?)`,
		fd.Symbol, core.DayString(core.Day(day)), fd.MarketCap, fd.ROCE, fd.PAT)
	return err
}
