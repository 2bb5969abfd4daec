package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) Executor {
	t.Helper()

	exec, err := Open(context.Background(), Config{Mode: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { exec.Close() })

	require.NoError(t, RunMigrations(context.Background(), exec))
	return exec
}

func insertCompany(t *testing.T, q Querier, code string) {
	t.Helper()

	_, err := q.Execute(context.Background(), NewStatement(
		"INSERT INTO companies (company_code, company_name_th, is_active, created_by) VALUES (@code, @name, @active, @by)",
		Params{"code": code, "name": "Company " + code, "active": true, "by": "test"},
	))
	require.NoError(t, err)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	exec := openSQLite(t)

	require.NoError(t, RunMigrations(ctx, exec))

	res, err := exec.Execute(ctx, NewStatement("SELECT COUNT(*) AS total FROM schema_migrations", nil))
	require.NoError(t, err)
	require.Equal(t, int64(2), res.First().Int64("total"))
}

func TestSQLExecutor_ReadAndWrite(t *testing.T) {
	ctx := context.Background()
	exec := openSQLite(t)

	insertCompany(t, exec, "C001")
	insertCompany(t, exec, "C002")

	res, err := exec.Execute(ctx, NewStatement(
		"UPDATE companies SET is_active = @active, updated_date = GETDATE() WHERE company_code = @code",
		Params{"active": false, "code": "C002"},
	))
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Affected())

	res, err = exec.Execute(ctx, NewStatement(
		"SELECT company_code, company_name_en, is_active, created_date, updated_date FROM companies ORDER BY company_code",
		nil,
	).Paginate(1, 10))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.First()
	require.Equal(t, "C002", row.String("company_code"))
	require.Nil(t, row.NullString("company_name_en"))
	require.False(t, row.Bool("is_active"))
	require.False(t, row.Time("created_date").IsZero())
	require.NotNil(t, row.NullTime("updated_date"))
}

func TestSQLExecutor_EmptyReadReturnsEmptyRows(t *testing.T) {
	exec := openSQLite(t)

	res, err := exec.Execute(context.Background(), NewStatement("SELECT * FROM companies WHERE company_code = @code", Params{"code": "none"}))
	require.NoError(t, err)
	require.NotNil(t, res.Rows)
	require.Empty(t, res.Rows)
	require.Nil(t, res.First())
}

func TestSQLExecutor_WithTxRollback(t *testing.T) {
	ctx := context.Background()
	exec := openSQLite(t)
	boom := errors.New("boom")

	err := exec.WithTx(ctx, func(q Querier) error {
		insertCompany(t, q, "C001")
		return boom
	})
	require.ErrorIs(t, err, boom)

	res, err := exec.Execute(ctx, NewStatement("SELECT COUNT(*) AS total FROM companies", nil))
	require.NoError(t, err)
	require.Equal(t, int64(0), res.First().Int64("total"))

	require.NoError(t, exec.WithTx(ctx, func(q Querier) error {
		insertCompany(t, q, "C001")
		return nil
	}))

	res, err = exec.Execute(ctx, NewStatement("SELECT COUNT(*) AS total FROM companies", nil))
	require.NoError(t, err)
	require.Equal(t, int64(1), res.First().Int64("total"))
}

func TestClassify_Constraints(t *testing.T) {
	ctx := context.Background()
	exec := openSQLite(t)
	insertCompany(t, exec, "C001")

	t.Run("duplicate primary key", func(t *testing.T) {
		_, err := exec.Execute(ctx, NewStatement(
			"INSERT INTO companies (company_code, company_name_th) VALUES (@code, @name)",
			Params{"code": "C001", "name": "dup"},
		))
		require.Error(t, err)
		require.ErrorIs(t, Classify(err), ErrUniqueViolation)
	})

	t.Run("second headquarters", func(t *testing.T) {
		insert := "INSERT INTO branches (branch_code, branch_name, company_code, is_headquarters) VALUES (@code, @name, @company, @hq)"
		_, err := exec.Execute(ctx, NewStatement(insert, Params{"code": "B001", "name": "HQ", "company": "C001", "hq": true}))
		require.NoError(t, err)

		_, err = exec.Execute(ctx, NewStatement(insert, Params{"code": "B002", "name": "HQ2", "company": "C001", "hq": true}))
		require.ErrorIs(t, Classify(err), ErrUniqueViolation)

		_, err = exec.Execute(ctx, NewStatement(insert, Params{"code": "B003", "name": "Branch", "company": "C001", "hq": false}))
		require.NoError(t, err)
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := exec.Execute(ctx, NewStatement(
			"INSERT INTO divisions (division_code, division_name, company_code) VALUES (@code, @name, @company)",
			Params{"code": "D001", "name": "Div", "company": "NOPE"},
		))
		require.ErrorIs(t, Classify(err), ErrForeignKeyViolation)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		other := errors.New("other")
		require.Equal(t, other, Classify(other))
		require.NoError(t, Classify(nil))
	})
}

func TestDisabledExecutor(t *testing.T) {
	ctx := context.Background()
	exec, err := Open(ctx, Config{Mode: ModeDisabled})
	require.NoError(t, err)

	res, err := exec.Execute(ctx, NewStatement("SELECT * FROM companies", nil))
	require.NoError(t, err)
	require.NotNil(t, res.Rows)
	require.Empty(t, res.Rows)

	res, err = exec.Execute(ctx, NewStatement("DELETE FROM companies", nil))
	require.NoError(t, err)
	require.NotNil(t, res.Rows)
	require.Empty(t, res.Rows)
	require.Equal(t, []int64{0}, res.RowsAffected)

	require.NoError(t, RunMigrations(ctx, exec))
	require.NoError(t, exec.Ping(ctx))
}

func TestUnavailableExecutor(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection refused")
	exec := NewUnavailableExecutor(SQLServer, cause)

	_, err := exec.Execute(ctx, NewStatement("SELECT 1", nil))
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, cause)

	require.ErrorIs(t, exec.WithTx(ctx, func(Querier) error { return nil }), ErrUnavailable)
	require.ErrorIs(t, exec.Ping(ctx), ErrUnavailable)
}

func TestIsRead(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{query: "SELECT 1", want: true},
		{query: "  select * from t", want: true},
		{query: "/* note */ SELECT 1", want: true},
		{query: "WITH x AS (SELECT 1) SELECT * FROM x", want: true},
		{query: "INSERT INTO t VALUES (1)", want: false},
		{query: "UPDATE t SET a = 1", want: false},
		{query: "DELETE FROM t", want: false},
		{query: "CREATE TABLE t (a INT)", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			require.Equal(t, tt.want, IsRead(tt.query))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "disabled", cfg: Config{Mode: ModeDisabled}},
		{name: "sqlite", cfg: Config{Mode: "sqlite", DSN: ":memory:"}},
		{name: "missing dsn", cfg: Config{Mode: "postgres"}, wantErr: true},
		{name: "unknown mode", cfg: Config{Mode: "oracle", DSN: "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSplitStatements(t *testing.T) {
	script := "-- header\nCREATE TABLE a (\n  id INT\n);\n\nCREATE INDEX ix ON a(id);\n"

	got := splitStatements(script)
	require.Equal(t, []string{"CREATE TABLE a (\nid INT\n)", "CREATE INDEX ix ON a(id)"}, got)
}
