package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Options struct {
	MaxOpenConns int
	// ConnectRetries: reintentos del ping inicial (postgres del compose
	// suele tardar en aceptar conexiones).
	ConnectRetries int
	RetryDelay     time.Duration
}

// Open abre el pool con pgx (database/sql) y espera a que responda el ping.
func Open(ctx context.Context, dsn string, opts Options) (*sql.DB, error) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(max(1, opts.MaxOpenConns/2))
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	for attempt := 0; ; attempt++ {
		err = ping(ctx, db)
		if err == nil {
			return db, nil
		}
		if attempt >= opts.ConnectRetries {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("postgres ping: %w", err)
}

func ping(ctx context.Context, db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.PingContext(pingCtx)
}
