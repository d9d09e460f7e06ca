// Package postgres persists members, adjudicated claims and leads in
// PostgreSQL. Writes join the caller's transaction when one is carried in
// the context.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"

	txcontext "adjudicator/pkg/platform/tx"
)

// Schema creates every table the stores use. It is idempotent.
//
//go:embed schema.sql
var Schema string

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

func executor(ctx context.Context, db *sql.DB) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, db)
}
