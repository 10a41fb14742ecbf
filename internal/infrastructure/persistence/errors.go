package persistence

import (
	"errors"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgreSQL SQLSTATE codes that indicate the transaction lost a race and can be retried
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
)

// classifyError maps driver errors onto domain errors. Serialization failures,
// deadlocks and busy SQLite databases become shared.ErrConcurrencyConflict so the
// application layer can retry the whole transaction.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s", shared.ErrConcurrencyConflict, pgErr.Message)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", shared.ErrAlreadyExists, pgErr.ConstraintName)
		}
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%w: %s", shared.ErrConcurrencyConflict, sqliteErr.Error())
		case sqlite3.ErrConstraint:
			if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
				return fmt.Errorf("%w: %s", shared.ErrAlreadyExists, sqliteErr.Error())
			}
		}
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", shared.ErrAlreadyExists, err.Error())
	}
	return err
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support row locks.
// SQLite serializes writers at the database level and rejects the clause.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
