// Package sqlstore implements the store interfaces on a database.Executor.
// Statements are written in the SQL Server dialect and compiled per backend by
// the executor.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"orgadmin/internal/database"
	"orgadmin/internal/store"

	"golang.org/x/sync/errgroup"
)

// New wires every accessor to exec.
func New(exec database.Executor) *store.Stores {
	return &store.Stores{
		Companies:   NewCompanyStore(exec),
		Branches:    NewBranchStore(exec),
		Divisions:   NewDivisionStore(exec),
		Departments: NewDepartmentStore(exec),
		Structure:   NewStructureStore(exec),
		APIKeys:     NewAPIKeyStore(exec),
		Users:       NewUserStore(exec),
	}
}

// where collects AND-ed predicates and their parameters.
type where struct {
	clauses []string
	params  database.Params
}

func newWhere() *where {
	return &where{params: database.Params{}}
}

func (w *where) eq(column, name string, value any) {
	w.clauses = append(w.clauses, column+" = @"+name)
	w.params[name] = value
}

func (w *where) boolean(column, name string, value *bool) {
	if value != nil {
		w.eq(column, name, *value)
	}
}

// search adds a case-insensitive substring match over columns.
func (w *where) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, "LOWER("+c+") LIKE @search")
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
	w.params["search"] = "%" + strings.ToLower(term) + "%"
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func query(ctx context.Context, q database.Querier, text string, params database.Params) ([]database.Row, error) {
	res, err := q.Execute(ctx, database.NewStatement(text, params))
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func run(ctx context.Context, q database.Querier, text string, params database.Params) (int64, error) {
	res, err := q.Execute(ctx, database.NewStatement(text, params))
	if err != nil {
		return 0, err
	}
	return res.Affected(), nil
}

// findPage runs the COUNT and the page query concurrently. Both share the
// same predicate and parameters.
func findPage[T any](ctx context.Context, q database.Querier, countSQL, dataSQL string, params database.Params, page, limit int, scan func(database.Row) T) (*store.Page[T], error) {
	page, limit = store.NormalizePage(page, limit)

	var (
		total int
		rows  []database.Row
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := q.Execute(gctx, database.NewStatement(countSQL, params))
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		total = int(res.First().Int64("total"))
		return nil
	})
	g.Go(func() error {
		res, err := q.Execute(gctx, database.NewStatement(dataSQL, params).Paginate((page-1)*limit, limit))
		if err != nil {
			return fmt.Errorf("page: %w", err)
		}
		rows = res.Rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &store.Page[T]{
		Rows:       scanAll(rows, scan),
		Pagination: store.NewPagination(page, limit, total),
	}, nil
}

func scanAll[T any](rows []database.Row, scan func(database.Row) T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, scan(row))
	}
	return out
}

func notFound(entity, code string) error {
	return fmt.Errorf("%s %s: %w", entity, code, store.ErrNotFound)
}

// writeError maps constraint violations raised by inserts and updates.
func writeError(entity, code string, err error) error {
	err = database.Classify(err)
	switch {
	case errors.Is(err, database.ErrUniqueViolation):
		return fmt.Errorf("%s %s: %w: %w", entity, code, store.ErrAlreadyExists, err)
	case errors.Is(err, database.ErrForeignKeyViolation):
		return fmt.Errorf("%s %s: %w: %w", entity, code, store.ErrInvalidReference, err)
	}
	return err
}

// deleteError maps a foreign key violation on delete to ErrInUse.
func deleteError(entity, code string, err error) error {
	err = database.Classify(err)
	if errors.Is(err, database.ErrForeignKeyViolation) {
		return fmt.Errorf("%s %s: %w: %w", entity, code, store.ErrInUse, err)
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// keyedMutex serializes work per key, e.g. headquarters changes per company.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
