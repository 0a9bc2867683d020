package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
	pgNumericOutOfRange   = "22003"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a duplicate key error.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// IsForeignKeyViolation reports a reference to a missing row.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// IsInvalidText reports a value PostgreSQL could not parse, e.g. a
// malformed uuid in a path parameter.
func IsInvalidText(err error) bool {
	return pgCode(err) == pgInvalidTextRepr
}

// IsNumericOutOfRange reports a value that does not fit its column or cast
// type, e.g. a SUM cast to bigint.
func IsNumericOutOfRange(err error) bool {
	return pgCode(err) == pgNumericOutOfRange
}
