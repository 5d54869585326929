package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

// MapError converts pgx/pgconn errors to domain errors. key identifies the
// row (word id, term, date) in the message.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
func MapError(err error, entity string, key any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %v: %w", entity, key, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", entity, key, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505": // unique_violation
			return fmt.Errorf("%s %v: %w", entity, key, domain.ErrAlreadyExists)
		case pgErr.Code == "23503": // foreign_key_violation
			return fmt.Errorf("%s %v: %w", entity, key, domain.ErrNotFound)
		case pgErr.Code == "23514": // check_violation
			return fmt.Errorf("%s %v: %w", entity, key, domain.ErrValidation)
		case pgErr.Code == "57P01", len(pgErr.Code) == 5 && pgErr.Code[:2] == "08": // admin_shutdown, connection_exception
			return fmt.Errorf("%s %v: %w: %w", entity, key, domain.ErrStoreUnavailable, err)
		}
		return fmt.Errorf("%s %v: %w", entity, key, err)
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%s %v: %w: %w", entity, key, domain.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s %v: %w", entity, key, err)
}
