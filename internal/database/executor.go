package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xwb1989/sqlparser"
)

// Result is the backend-independent shape of a statement result. Reads fill
// Rows; writes fill RowsAffected and, where the driver reports it, LastInsertID.
type Result struct {
	Rows         []Row
	RowsAffected []int64
	LastInsertID *int64
}

// Affected sums RowsAffected.
func (r *Result) Affected() int64 {
	var n int64
	for _, a := range r.RowsAffected {
		n += a
	}
	return n
}

// First returns the first row, or nil when there is none.
func (r *Result) First() Row {
	if len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// Querier executes single statements.
type Querier interface {
	Execute(ctx context.Context, stmt Statement) (*Result, error)
}

// Executor is the single execution entry point over the configured backend.
// Driver errors are returned unchanged; there is no retry.
type Executor interface {
	Querier

	// WithTx runs fn inside a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(q Querier) error) error

	Dialect() Dialect
	Ping(ctx context.Context) error
	Close() error
}

// IsRead reports whether the statement returns rows.
func IsRead(query string) bool {
	if sqlparser.Preview(query) == sqlparser.StmtSelect {
		return true
	}
	trimmed := strings.TrimLeft(sqlparser.StripLeadingComments(query), " \t\r\n(")
	return len(trimmed) >= 4 && strings.EqualFold(trimmed[:4], "WITH")
}

type runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execute(ctx context.Context, r runner, d Dialect, stmt Statement) (*Result, error) {
	t, err := stmt.Compile(d)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() {
		zerolog.Ctx(ctx).Debug().
			Str("dialect", string(d)).
			Str("sql", t.SQL).
			Dur("duration", time.Since(started)).
			Msg("sql statement")
	}()

	if IsRead(t.SQL) {
		rows, err := r.QueryContext(ctx, t.SQL, t.Args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		out, err := rowsToMaps(rows)
		if err != nil {
			return nil, err
		}
		return &Result{Rows: out}, nil
	}

	res, err := r.ExecContext(ctx, t.SQL, t.Args...)
	if err != nil {
		return nil, err
	}
	affected, _ := res.RowsAffected()
	out := &Result{RowsAffected: []int64{affected}}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = &id
	}
	return out, nil
}

// SQLExecutor runs statements on a database/sql pool.
type SQLExecutor struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLExecutor wraps an open pool. The dialect decides how statements are
// compiled before they reach the driver.
func NewSQLExecutor(db *sql.DB, dialect Dialect) *SQLExecutor {
	return &SQLExecutor{db: db, dialect: dialect}
}

func (e *SQLExecutor) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	return execute(ctx, e.db, e.dialect, stmt)
}

func (e *SQLExecutor) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txQuerier{tx: tx, dialect: e.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (e *SQLExecutor) Dialect() Dialect { return e.dialect }

func (e *SQLExecutor) Ping(ctx context.Context) error { return e.db.PingContext(ctx) }

func (e *SQLExecutor) Close() error { return e.db.Close() }

type txQuerier struct {
	tx      *sql.Tx
	dialect Dialect
}

func (q *txQuerier) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	return execute(ctx, q.tx, q.dialect, stmt)
}

// DisabledExecutor skips all database work. Reads return no rows and writes
// return no rows with zero affected rows.
type DisabledExecutor struct {
	dialect Dialect
}

func NewDisabledExecutor() *DisabledExecutor {
	return &DisabledExecutor{dialect: SQLServer}
}

func (e *DisabledExecutor) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	if IsRead(stmt.Text) {
		return &Result{Rows: []Row{}}, nil
	}
	return &Result{Rows: []Row{}, RowsAffected: []int64{0}}, nil
}

func (e *DisabledExecutor) WithTx(ctx context.Context, fn func(q Querier) error) error {
	return fn(e)
}

func (e *DisabledExecutor) Dialect() Dialect { return e.dialect }

func (e *DisabledExecutor) Ping(ctx context.Context) error { return nil }

func (e *DisabledExecutor) Close() error { return nil }

// UnavailableExecutor stands in for a backend that failed to connect at
// startup so the process can keep serving diagnostics.
type UnavailableExecutor struct {
	dialect Dialect
	cause   error
}

func NewUnavailableExecutor(dialect Dialect, cause error) *UnavailableExecutor {
	return &UnavailableExecutor{dialect: dialect, cause: cause}
}

func (e *UnavailableExecutor) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	return nil, e.err()
}

func (e *UnavailableExecutor) WithTx(ctx context.Context, fn func(q Querier) error) error {
	return e.err()
}

func (e *UnavailableExecutor) Dialect() Dialect { return e.dialect }

func (e *UnavailableExecutor) Ping(ctx context.Context) error { return e.err() }

func (e *UnavailableExecutor) Close() error { return nil }

func (e *UnavailableExecutor) err() error {
	return fmt.Errorf("%w: %w", ErrUnavailable, e.cause)
}
