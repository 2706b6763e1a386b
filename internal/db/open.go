package db

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/config"
)

// Open builds the store selected by cfg.StoreDriver and seeds it when empty.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverMemory, "":
		store = NewMemoryStore()
	case config.DriverSQLite:
		store, err = OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverMongo:
		client, cerr := ConnectMongo(ctx, cfg.MongoURI)
		if cerr != nil {
			return nil, cerr
		}
		store, err = NewMongoStore(ctx, client, cfg.MongoDB)
		if err != nil {
			_ = client.Disconnect(ctx)
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	if err := Seed(ctx, store); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	log.WithField("driver", cfg.StoreDriver).Info("Store ready")
	return store, nil
}
