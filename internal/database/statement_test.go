package database

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatement_CompileWithoutPage(t *testing.T) {
	stmt := NewStatement("SELECT * FROM companies WHERE company_code = @code", Params{"code": "C001"})

	got, err := stmt.Compile(SQLite)
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM companies WHERE company_code = ?", got.SQL)
	require.Equal(t, []any{"C001"}, got.Args)
}

func TestStatement_Paginate(t *testing.T) {
	base := NewStatement("SELECT * FROM companies WHERE is_active = @active ORDER BY company_code", Params{"active": true})
	stmt := base.Paginate(20, 10)

	require.Nil(t, base.Page, "Paginate must not modify the receiver")

	tests := []struct {
		name     string
		dialect  Dialect
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "sqlserver",
			dialect: SQLServer,
			wantSQL: "SELECT * FROM companies WHERE is_active = @active ORDER BY company_code OFFSET @pageOffset ROWS FETCH NEXT @pageLimit ROWS ONLY",
			wantArgs: []any{
				sql.Named("active", true),
				sql.Named("pageOffset", 20),
				sql.Named("pageLimit", 10),
			},
		},
		{
			name:     "sqlite",
			dialect:  SQLite,
			wantSQL:  "SELECT * FROM companies WHERE is_active = ? ORDER BY company_code LIMIT ? OFFSET ?",
			wantArgs: []any{int64(1), 10, 20},
		},
		{
			name:     "postgres",
			dialect:  Postgres,
			wantSQL:  "SELECT * FROM companies WHERE is_active = $1 ORDER BY company_code LIMIT $2 OFFSET $3",
			wantArgs: []any{int64(1), 10, 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stmt.Compile(tt.dialect)
			require.NoError(t, err)
			require.Equal(t, tt.wantSQL, got.SQL)
			require.Equal(t, tt.wantArgs, got.Args)
		})
	}

	// params of the original statement are not mutated
	require.Equal(t, Params{"active": true}, base.Params)
}

func TestStatement_PaginatePositional(t *testing.T) {
	stmt := Statement{
		Text:       "SELECT * FROM branches WHERE company_code = ? ORDER BY branch_code",
		Positional: []any{"C001"},
	}.Paginate(5, 25)

	got, err := stmt.Compile(Postgres)
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM branches WHERE company_code = $1 ORDER BY branch_code LIMIT $2 OFFSET $3", got.SQL)
	require.Equal(t, []any{"C001", 25, 5}, got.Args)
	require.Equal(t, []any{"C001"}, stmt.Positional)
}
