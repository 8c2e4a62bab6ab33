// Package archive stores exported backtest artifacts for later download.
package archive

import "context"

// Store is the artifact storage backend. Paths are relative artifact names
// like "portfolio_logs.csv".
type Store interface {
	// Write stores data at the given path, overwriting any previous version.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves the artifact at the given path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists checks whether an artifact is present.
	Exists(ctx context.Context, path string) (bool, error)
}
