package corpus

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
)

const pgSchema = `create table if not exists conclude_files (
	run_at timestamptz not null default now(),
	f text not null,
	p text not null primary key,
	c text not null
)`

// WritePostgres replaces the contents of the conclude_files table with
// results in a single transaction. Postgres text cannot hold NUL, so NUL
// runes are dropped.
func WritePostgres(ctx context.Context, dsn string, results []*ExtractionResult) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "delete from conclude_files"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("conclude_files", "f", "p", "c"))
	if err != nil {
		return err
	}
	for _, res := range results {
		if _, err := stmt.ExecContext(ctx, res.FileName, res.RelativePath, strings.ReplaceAll(res.Content, "\x00", "")); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return tx.Commit()
}
