package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"
)

// Sentinel errors for database operations
var (
	ErrMissingParam        = errors.New("missing query parameter")
	ErrUnavailable         = errors.New("database unavailable")
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// SQL Server error numbers
const (
	mssqlUniqueIndex      = 2601
	mssqlUniqueConstraint = 2627
	mssqlConstraint       = 547
)

// Classify maps driver-specific constraint errors to the sentinels above.
// The original error stays in the chain; anything unrecognised is returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s: %w", ErrUniqueViolation, pqErr.Constraint, err)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s: %w", ErrForeignKeyViolation, pqErr.Constraint, err)
		}
		return err
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case mssqlUniqueIndex, mssqlUniqueConstraint:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case mssqlConstraint:
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		}
	}
	return err
}
