package tableio

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// ExportSQLite writes t into a table of the SQLite database at path,
// replacing any table of the same name. Number columns are REAL, the rest
// TEXT; nulls are NULL.
func ExportSQLite(ctx context.Context, path, name string, t *table.Table) error {
	if name == "" {
		name = t.Name()
	}
	if name == "" {
		return fmt.Errorf("export sqlite: table name required")
	}
	for _, n := range t.Names() {
		if n == "" {
			return &table.IdentifierError{Op: "export sqlite", Identifier: n, Reason: "SQLite columns need a name; rename it or run clean_names first"}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cols := t.Columns()
	defs := make([]string, len(cols))
	quoted := make([]string, len(cols))
	for i, c := range cols {
		typ := "TEXT"
		if c.Type() == table.Number {
			typ = "REAL"
		}
		quoted[i] = quoteIdent(c.Name())
		defs[i] = quoted[i] + " " + typ
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdent(name)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quoteIdent(name)+` (`+strings.Join(defs, ", ")+`)`); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+quoteIdent(name)+` (`+strings.Join(quoted, ", ")+`) VALUES (`+ph+`)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	args := make([]any, len(cols))
	for i := 0; i < t.NRow(); i++ {
		for j, c := range cols {
			args[j] = sqliteValue(c.Value(i))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.Info("exported table to sqlite", slog.String("path", path), slog.String("table", name), slog.Int("rows", t.NRow()))
	return nil
}

func sqliteValue(v table.Value) any {
	if v.IsNull() {
		return nil
	}
	if f, ok := v.Number(); ok {
		return f
	}
	return v.String()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
