package remote

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"munidenuncia/internal/repository"
	"munidenuncia/internal/service"
)

// Postgres error codes that mean "no such row" from the caller's point of view.
const (
	pgForeignKeyViolation = "23503" // message for a missing report
	pgInvalidTextRep      = "22P02" // id that is not a uuid
)

// mapErr classifies a backend failure into the repository taxonomy,
// keeping the cause in the chain.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if kind := classify(err); kind != nil {
		return fmt.Errorf("%s: %w: %w", op, kind, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func classify(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		return repository.ErrAuth
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgForeignKeyViolation, pgErr.Code == pgInvalidTextRep:
			return repository.ErrNotFound
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08", // connection exception
			pgErr.Code == "57P01", pgErr.Code == "57P03": // admin shutdown, cannot connect now
			return repository.ErrTransient
		}
		return nil
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		pgconn.Timeout(err),
		errors.As(err, &connectErr),
		errors.As(err, &netErr):
		return repository.ErrTransient
	}
	return nil
}
