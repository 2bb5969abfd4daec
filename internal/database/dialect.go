package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL syntax a backend understands. Statements in this
// code base are written once in the SQLServer dialect and translated on the way
// to the other backends.
type Dialect string

const (
	SQLServer Dialect = "sqlserver"
	SQLite    Dialect = "sqlite"
	Postgres  Dialect = "postgres"
)

// ParseDialect accepts the configuration spelling of a dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unknown sql dialect %q", s)
	}
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case SQLite:
		return "sqlite3"
	case Postgres:
		return "postgres"
	default:
		return "sqlserver"
	}
}

// Placeholder returns the bind marker for the 1-based argument index.
func (d Dialect) Placeholder(index int) string {
	switch d {
	case Postgres:
		return "$" + strconv.Itoa(index)
	case SQLite:
		return "?"
	default:
		return "@p" + strconv.Itoa(index)
	}
}

func (d Dialect) identityColumn() string {
	if d == Postgres {
		return "SERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d Dialect) datetimeType() string {
	if d == Postgres {
		return "TIMESTAMP"
	}
	return "TEXT"
}

// createMigrationsTable is the only statement that cannot be shared between
// dialects: SQL Server has no CREATE TABLE IF NOT EXISTS.
func (d Dialect) createMigrationsTable() string {
	const columns = `(version INT NOT NULL PRIMARY KEY, name NVARCHAR(255) NOT NULL, applied_at DATETIME NOT NULL DEFAULT GETDATE())`
	if d == SQLServer {
		return `IF OBJECT_ID('schema_migrations', 'U') IS NULL CREATE TABLE schema_migrations ` + columns
	}
	return `CREATE TABLE IF NOT EXISTS schema_migrations ` + columns
}
