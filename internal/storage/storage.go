// Package storage opens the configured metadata backend and applies its
// migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/workplan/internal/config"
	"github.com/dmitrijs2005/workplan/internal/dbx"
	"github.com/dmitrijs2005/workplan/internal/filex"
	"github.com/dmitrijs2005/workplan/internal/migrations"
	"github.com/dmitrijs2005/workplan/internal/repositories/metadata"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// RedisNamespace prefixes every key the Redis backend writes.
const RedisNamespace = "workplan:"

// Storage is an opened metadata backend. Close releases the connection.
type Storage struct {
	Metadata metadata.Repository
	closer   io.Closer
}

func (s *Storage) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// RunMigrations applies the embedded goose migrations for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	gooseDialect := "sqlite3"
	if dialect == dbx.DialectPostgres {
		gooseDialect = "postgres"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, string(dialect))
}

// OpenSQL opens a database/sql backend, migrates it and wraps it in a
// metadata.SQLRepository.
func OpenSQL(ctx context.Context, driverName, dsn string, dialect dbx.Dialect) (*Storage, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dialect == dbx.DialectSQLite {
		// a single writer avoids SQLITE_BUSY between the REPL and the ticker
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := RunMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Storage{Metadata: metadata.NewSQLRepository(db, dialect), closer: db}, nil
}

// OpenRedis connects to Redis and verifies the connection with PING.
func OpenRedis(ctx context.Context, addr, password string, db int, prefix string) (*Storage, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{Metadata: metadata.NewRedisRepository(client, prefix), closer: client}, nil
}

// Open selects the backend named by cfg.StorageDriver.
//
// Callers apply cfg.KeyPrefix to their keys on every backend. The Redis
// repository additionally namespaces its keys under RedisNamespace.
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		if err := filex.EnsureParentDir(cfg.StorageDSN); err != nil {
			return nil, err
		}
		return OpenSQL(ctx, "sqlite", cfg.StorageDSN, dbx.DialectSQLite)
	case config.DriverPostgres:
		return OpenSQL(ctx, "pgx", cfg.StorageDSN, dbx.DialectPostgres)
	case config.DriverRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, RedisNamespace)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
