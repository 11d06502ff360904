package db

import (
	"errors"
	"strings"

	pgconnv4 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint failure. When
// constraintName is set, only a violation of that constraint (or index) counts.
func IsUniqueViolation(err error, constraintName string) bool {
	return matchesViolation(err, pgUniqueViolation, constraintName, "duplicate key value", "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err references a missing parent row.
func IsForeignKeyViolation(err error) bool {
	return matchesViolation(err, pgForeignKeyViolation, "", "violates foreign key constraint", "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err is a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	return matchesViolation(err, pgCheckViolation, "", "violates check constraint", "CHECK constraint failed")
}

func matchesViolation(err error, sqlState, constraintName string, fallbacks ...string) bool {
	if err == nil {
		return false
	}

	if code, constraint, ok := pgDetails(err); ok {
		if code != sqlState {
			return false
		}
		return constraintName == "" || constraint == constraintName
	}

	msg := err.Error()
	for _, fallback := range fallbacks {
		if strings.Contains(msg, fallback) {
			return constraintName == "" || strings.Contains(msg, constraintName)
		}
	}
	return false
}

func pgDetails(err error) (code, constraint string, ok bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, true
	}
	var legacyErr *pgconnv4.PgError
	if errors.As(err, &legacyErr) {
		return legacyErr.Code, legacyErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}
