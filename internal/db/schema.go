package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema DDL, created idempotently at startup. The embedded collections
// (program exercises, finished workout exercise names) live in single TEXT
// columns as JSON blobs, see the codec files in the entity packages.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS exercises (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		tip TEXT,
		yt_search TEXT,
		sets INTEGER NOT NULL DEFAULT 1,
		reps INTEGER NOT NULL DEFAULT 1,
		weight DOUBLE PRECISION NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS programs (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		exercises TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS finished_workouts (
		id SERIAL PRIMARY KEY,
		finished_at TIMESTAMPTZ NOT NULL,
		duration_sec INTEGER NOT NULL,
		exercises_done TEXT NOT NULL
	);`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS exercises (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		tip TEXT,
		yt_search TEXT,
		sets INTEGER NOT NULL DEFAULT 1,
		reps INTEGER NOT NULL DEFAULT 1,
		weight REAL NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS programs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		exercises TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS finished_workouts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		finished_at TEXT NOT NULL,
		duration_sec INTEGER NOT NULL,
		exercises_done TEXT NOT NULL
	);`,
}

func EnsureSchemaPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func EnsureSchemaSQLite(ctx context.Context, sqlDB *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
