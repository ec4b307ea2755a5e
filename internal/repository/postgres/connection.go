package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// Registered driver names: "pgx" (jackc/pgx) and "postgres" (lib/pq).
var supportedDrivers = map[string]bool{
	"pgx":      true,
	"postgres": true,
}

type PoolConfig struct {
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
}

// Open connects to Postgres with the named driver and applies the pool settings.
func Open(ctx context.Context, driver, connStr string, pool PoolConfig) (*sql.DB, error) {
	if !supportedDrivers[driver] {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if connStr == "" {
		return nil, fmt.Errorf("empty database URL")
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeMin) * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	log.WithField("driver", driver).Info("[DB] Database connected successfully")
	return db, nil
}
