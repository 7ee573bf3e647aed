// Package store persists calibration points and the last-used estimation input.
//
// Three backends are available behind the Store interface:
//   - memory: process-local, used by tests and the CLI dry runs
//   - file: JSON documents under a data directory
//   - postgres: tables in a PostgreSQL database (pgx driver)
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"refracalc/internal/config"
	"refracalc/internal/refractometer"
)

// LastInput is the most recently submitted estimation input
type LastInput struct {
	Input     refractometer.EstimationInput `json:"input"`
	UpdatedAt time.Time                     `json:"updated_at"`
}

// Store is the persistence collaborator of the refractometer service.
// LoadLastInput reports false when nothing was saved yet.
type Store interface {
	LoadPoints(ctx context.Context) ([]refractometer.CalibrationPoint, error)
	SavePoints(ctx context.Context, points []refractometer.CalibrationPoint) error
	LoadLastInput(ctx context.Context) (LastInput, bool, error)
	SaveLastInput(ctx context.Context, in refractometer.EstimationInput) error
	Ping(ctx context.Context) error
	Close() error
}

// New opens the backend selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "store"), slog.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverFile:
		return NewFileStore(cfg.DataDir, logger)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func clonePoints(points []refractometer.CalibrationPoint) []refractometer.CalibrationPoint {
	out := make([]refractometer.CalibrationPoint, len(points))
	copy(out, points)
	return out
}
