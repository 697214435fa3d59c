package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/tracklin/internal/repository"
)

// classify maps driver errors onto the repository error set. The original
// error stays in the chain for logging.
func classify(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		// Ids that cannot be cast to the column type can't name a row.
		case pgerrcode.InvalidTextRepresentation, pgerrcode.NumericValueOutOfRange:
			return repository.ErrNotFound
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %w", repository.ErrConflict, err)
		}
	}
	return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
}
