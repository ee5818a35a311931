// Package repository stores exchange rate records in PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver registration
	"go.uber.org/zap"

	"rateservice/internal/config"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// NewPostgresDB opens a connection pool and waits for the database to accept
// connections, retrying a few times while it starts up.
func NewPostgresDB(cfg *config.DatabaseConfig, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)

	for attempt := 1; ; attempt++ {
		err = ping(db)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			_ = db.Close()
			return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", attempt, err)
		}
		logger.Warnw("Database not reachable yet", "attempt", attempt, "host", cfg.Host, "error", err)
		time.Sleep(connectBackoff)
	}

	logger.Infow("Connected to Postgres", "host", cfg.Host, "db", cfg.Name)
	return db, nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
