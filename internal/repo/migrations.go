package repo

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// MigrationsDir is the directory inside MigrationsFS holding goose files.
const MigrationsDir = "migrations"

// MigrationsFS embeds the Postgres schema migrations.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// RunMigrations executes a goose command (up, down, status, version, redo,
// up-to, down-to) against a Postgres database using the embedded files.
func RunMigrations(ctx context.Context, db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(MigrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.RunContext(ctx, command, db, MigrationsDir, args...)
}
