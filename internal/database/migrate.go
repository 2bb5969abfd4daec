package database

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	name    string
	content string
}

// RunMigrations executes all pending embedded .sql files in version order.
// Applied versions are tracked in the schema_migrations table.
func RunMigrations(ctx context.Context, exec Executor) error {
	if _, err := exec.Execute(ctx, NewStatement(exec.Dialect().createMigrationsTable(), nil)); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	res, err := exec.Execute(ctx, NewStatement("SELECT version FROM schema_migrations", nil))
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	applied := make(map[int]bool, len(res.Rows))
	for _, row := range res.Rows {
		applied[int(row.Int64("version"))] = true
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		err := exec.WithTx(ctx, func(q Querier) error {
			for _, stmt := range splitStatements(m.content) {
				if _, err := q.Execute(ctx, NewStatement(stmt, nil)); err != nil {
					return err
				}
			}
			_, err := q.Execute(ctx, NewStatement(
				"INSERT INTO schema_migrations (version, name) VALUES (@version, @name)",
				Params{"version": m.version, "name": m.name},
			))
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("file", m.name).Msg("Migration failed")
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		log.Info().Str("file", m.name).Msg("Migration applied")
	}
	return nil
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}

		// "001_initial_schema.sql" -> 1
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			log.Warn().Str("file", e.Name()).Msg("Skipping migration file with invalid name format")
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			log.Warn().Str("file", e.Name()).Err(err).Msg("Skipping migration file with invalid version number")
			continue
		}

		body, err := migrationsFS.ReadFile("migrations/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", e.Name(), err)
		}
		migrations = append(migrations, migration{version: version, name: e.Name(), content: string(body)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

// splitStatements splits a script on lines ending with ';' and drops
// comment-only lines.
func splitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	sc := bufio.NewScanner(strings.NewReader(script))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(line, ";") {
			stmts = append(stmts, strings.TrimSuffix(strings.TrimSpace(cur.String()), ";"))
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}
