package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("repository: duplicate key")
)

const pgUniqueViolation = "23505"

// translate maps driver-level unique violations onto ErrDuplicate.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}
