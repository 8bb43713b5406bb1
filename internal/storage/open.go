package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/chepyr/task-dashboard/internal/db"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var _ KV = (*db.KVRepository)(nil)

type Options struct {
	Driver      string
	DSN         string
	DataDir     string
	RedisURL    string
	RedisPrefix string
}

// Open builds the backend named by opts.Driver. The returned close func
// releases connections and is never nil. SQL drivers must be registered by
// the caller.
func Open(ctx context.Context, opts Options) (KV, func() error, error) {
	noop := func() error { return nil }

	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryKV(), noop, nil

	case DriverFile:
		f, err := NewFileKV(opts.DataDir)
		if err != nil {
			return nil, noop, fmt.Errorf("open file storage: %w", err)
		}
		return f, noop, nil

	case DriverSQLite, DriverPostgres:
		conn, err := db.Connect(opts.Driver, opts.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("connect %s: %w", opts.Driver, err)
		}
		repo := db.NewKVRepository(conn)
		if err := repo.EnsureSchema(ctx); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return repo, conn.Close, nil

	case DriverRedis:
		redisOpts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisKV(client, opts.RedisPrefix), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
