package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrForeignKey = errors.New("foreign key violation")
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// sqlState returns the SQLSTATE of a postgres driver error, or ""
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsNotFoundError reports whether err means the requested row does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports a unique constraint violation
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		sqlState(err) == sqlStateUniqueViolation
}

// IsForeignKeyError reports a referential integrity violation
func IsForeignKeyError(err error) bool {
	return errors.Is(err, ErrForeignKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		sqlState(err) == sqlStateForeignKeyViolation
}
