package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Store backends accepted by OpenStore.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StoreOptions select and configure the store backend.
type StoreOptions struct {
	Backend     string
	Redis       RedisOptions
	PostgresDSN string
}

// OpenStore connects to the configured backend. The returned close function
// releases the connection.
func OpenStore(opts StoreOptions, logger logrus.FieldLogger) (Store, func() error, error) {
	switch opts.Backend {
	case BackendRedis, "":
		client, err := InitializeRedisClient(opts.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisService(client, logger), client.Close, nil

	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("DATABASE_DSN is required for the %s store", BackendPostgres)
		}
		gdb, err := OpenPostgres(opts.PostgresDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		store, err := NewPostgresService(gdb, logger)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", opts.Backend)
}
