// Package postgres implements the token account, hardware provider, job and
// listing stores on PostgreSQL. All stores share one pgx connection pool;
// balance mutations run guarded so the database itself enforces that no
// account ever goes negative.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"quantum-resource-allocation/internal/storage"
)

// Pool wraps pgxpool.Pool so stores take a single injected handle.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to PostgreSQL and verifies the connection.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

const pgErrUniqueViolation = "23505" // unique_violation

// isDuplicateKeyError reports whether err is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}

// isNotFoundError reports whether err indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// int64Amount converts a unit amount for a BIGINT column. Values above
// MaxInt64 would wrap negative in the conversion and surface as an opaque
// CHECK violation, so they are rejected here.
func int64Amount(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("amount %d exceeds storage range: %w", v, storage.ErrInvalidInput)
	}
	return int64(v), nil
}
