package repository

import (
	"context"
	"errors"
	"fmt"

	"alarm-clock-backend/internal/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// invalidTextRepresentation is the SQLSTATE of a value that does not parse as its column type
const invalidTextRepresentation = "22P02"

// Connect opens a connection pool and verifies it with a ping
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// withTx runs fn in a transaction, committing on success and rolling back otherwise
func withTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit error: %w", err)
	}
	return nil
}

// notFound turns pgx.ErrNoRows, or a key that cannot exist in the column, into
// an apperr not-found error and wraps anything else
func notFound(err error, op, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(op, what+" not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return apperr.NotFound(op, what+" not found")
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// checkID reports a key that is not a UUID as not found, since no row can carry it
func checkID(id, op, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.NotFound(op, what+" not found")
	}
	return nil
}
