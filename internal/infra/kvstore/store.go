// Package kvstore persists the small amount of local client state (the
// session token and the username) behind a key-value interface.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

var ErrKeyNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

type Config struct {
	Backend Backend
	// DSN is the sqlite file or the postgres connection string.
	DSN   string
	Redis *RedisConfig
}

// Open builds the store selected by the configuration.
func Open(config Config) (Store, error) {
	switch config.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite, BackendPostgres:
		return NewSQLStore(config.Backend, config.DSN)
	case BackendRedis:
		return NewRedisStore(config.Redis)
	default:
		return nil, fmt.Errorf("unsupported session backend %q", config.Backend)
	}
}
