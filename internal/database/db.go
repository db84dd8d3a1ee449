package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// NormalizeDSN parses a MySQL DSN and forces the options the repositories
// rely on: parseTime=true so DATETIME scans into time.Time, UTC location so
// stored times are consistent, and utf8mb4.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// The driver keeps charset outside Params; set it through its option
	// so a charset given in the DSN is replaced rather than duplicated.
	delete(cfg.Params, "charset")
	if err := cfg.Apply(mysql.Charset("utf8mb4", "")); err != nil {
		return "", fmt.Errorf("apply charset: %w", err)
	}
	return cfg.FormatDSN(), nil
}

// Open connects to MySQL and verifies the connection.  The initial ping is
// retried with exponential backoff for up to maxWait so the service can
// start alongside its database container.
func Open(ctx context.Context, dsn string, maxWait time.Duration) (*sql.DB, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxWait
	ping := func() error {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("database not ready")
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
