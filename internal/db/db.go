package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// Kind is the storage backend selected by the connection string.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
)

// TargetKind decides the backend for a connection string: postgres URLs go
// to the postgres backend, everything else is treated as a sqlite file path.
func TargetKind(connString string) Kind {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		return KindPostgres
	}
	return KindSQLite
}

type NewDBPoolParams struct {
	ConnString     string
	TracingEnabled bool
}

func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(params.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return pool, nil
}

// OpenSQLite opens (and creates, if absent) the single-file sqlite database
// at the given path. An optional sqlite:// prefix is accepted.
func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db [%s]: %w", path, err)
	}

	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY between concurrent request handlers
	sqlDB.SetMaxOpenConns(1)

	return sqlDB, nil
}
