package expr

import (
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// Filter keeps the rows of t for which where evaluates to True. A None
// result drops the row; any other non-bool result is an error.
func Filter(t *table.Table, where string, opts Options) (*table.Table, error) {
	p, err := compile("filter", t, where, opts)
	if err != nil {
		return nil, err
	}
	out, err := t.Filter(func(r table.Row) (bool, error) {
		v, err := p.eval(r.Index())
		if err != nil {
			return false, err
		}
		switch b := v.(type) {
		case starlark.Bool:
			return bool(b), nil
		case starlark.NoneType:
			return false, nil
		}
		return false, fmt.Errorf("filter: row %d: %q returned %s, want bool", r.Index()+1, where, v.Type())
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("filter", slog.String("where", where), slog.Int("rows_in", t.NRow()), slog.Int("rows_out", out.NRow()))
	return out, nil
}

// Mutate evaluates expression on every row and stores the results in column
// name, replacing a column of that name or appending a new one. The column is
// numeric when every result is a number or None, text otherwise.
func Mutate(t *table.Table, name, expression string, opts Options) (*table.Table, error) {
	if name == "" {
		return nil, &table.IdentifierError{Op: "mutate", Identifier: name, Reason: "new column name must not be empty"}
	}
	p, err := compile("mutate", t, expression, opts)
	if err != nil {
		return nil, err
	}
	vals := make([]table.Value, t.NRow())
	typ := table.Number
	for i := range vals {
		v, err := p.eval(i)
		if err != nil {
			return nil, err
		}
		vals[i] = fromStarlark(v)
		if vals[i].IsString() {
			typ = table.String
		}
	}
	col, err := table.NewColumn(name, typ, vals)
	if err != nil {
		return nil, fmt.Errorf("mutate: %w", err)
	}
	return t.Mutate(col)
}
