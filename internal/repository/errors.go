package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicado is returned when an insert hits a unique constraint.
var ErrDuplicado = errors.New("registro duplicado")

// traduzir maps driver errors that callers branch on to package sentinels.
func traduzir(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicado
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicado
	}
	return err
}

// talvez turns "record not found" into a nil error so optional lookups can
// return (nil, nil).
func talvez(err error) (bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
