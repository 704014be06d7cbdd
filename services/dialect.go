package services

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// greatest returns the SQL function that picks the larger of its arguments.
// Postgres spells it GREATEST; SQLite's scalar MAX does the same job.
func greatest(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "MAX"
	}
	return "GREATEST"
}

// isUniqueViolation reports whether err came from a unique index rejecting an
// insert. The DB is opened with TranslateError so gorm normally gives us
// ErrDuplicatedKey; the pgconn check covers raw statements.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
