package stack

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/dunkirk-sh/ennote/internal/stack/migrations"
)

// Migrate brings the stacks schema up to date using the embedded goose
// migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
