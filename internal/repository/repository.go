// Package repository holds the GORM-backed persistence ports. Every write
// that participates in a service-level transaction takes the tx explicitly.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// InsertOutcome is the tagged result of an insert against a unique constraint.
type InsertOutcome int

const (
	InsertOK       InsertOutcome = iota
	InsertConflict               // unique constraint rejected the row; safe to retry with a new key
	InsertFatal                  // anything else; the transaction must be abandoned
)

func (o InsertOutcome) String() string {
	switch o {
	case InsertOK:
		return "ok"
	case InsertConflict:
		return "conflict"
	default:
		return "fatal"
	}
}

const pgUniqueViolation = "23505"

// IsUniqueViolation reports a unique-constraint error, optionally restricted
// to constraints whose name contains one of the given fragments. A bare
// gorm.ErrDuplicatedKey carries no constraint name and always matches.
func IsUniqueViolation(err error, constraintHints ...string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return matchesConstraint(pgErr.ConstraintName, constraintHints)
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func matchesConstraint(name string, hints []string) bool {
	if len(hints) == 0 || name == "" {
		return true
	}
	for _, h := range hints {
		if strings.Contains(name, h) {
			return true
		}
	}
	return false
}

// conn picks the transaction when present, else the base handle.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// paginate normalizes page/limit and returns the limit and offset to apply.
func paginate(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return limit, (page - 1) * limit
}
