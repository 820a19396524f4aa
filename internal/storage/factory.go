package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robotomize/forexdaily/internal/logging"
)

const (
	DriverFirestore = "firestore"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverMemory    = "memory"
)

const DefaultCollection = "exchange_rates"

// Config controls how the storage backend is opened.
type Config struct {
	Driver     string
	DSN        string
	ProjectID  string
	Collection string
}

// Open constructs a Store based on the given configuration.
func Open(ctx context.Context, cfg Config) (Store, error) {
	logger := logging.FromContext(ctx)

	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	drv := cfg.Driver
	if drv == "" {
		drv = DriverFirestore
	}

	switch drv {
	case DriverMemory:
		logger.Info("storage: using in-memory backend")
		return NewMemory(), nil

	case DriverFirestore:
		logger.Info("storage: using firestore", slog.String("project", cfg.ProjectID), slog.String("collection", collection))
		return NewFirestoreStore(ctx, cfg.ProjectID, collection)

	case DriverSQLite, DriverPostgres:
		logger.Info("storage: using gorm", slog.String("driver", drv), slog.String("table", collection))
		st, err := NewGormStore(drv, cfg.DSN, collection)
		if err != nil {
			return nil, err
		}

		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("storage migrate: %w", err)
		}

		return st, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, drv)
	}
}
