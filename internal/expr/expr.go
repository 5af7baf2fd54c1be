// Package expr evaluates row expressions for filter and mutate. Expressions
// use Starlark syntax; columns whose names are identifiers are bound as
// variables and any column can be read with col("name").
package expr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// DefaultMaxSteps bounds the work a single row evaluation may do.
const DefaultMaxSteps = uint64(100_000)

// Options tunes evaluation.
type Options struct {
	// MaxSteps caps Starlark execution steps per row (0 = DefaultMaxSteps).
	MaxSteps uint64
}

func (o Options) maxSteps() uint64 {
	if o.MaxSteps == 0 {
		return DefaultMaxSteps
	}
	return o.MaxSteps
}

// program is one expression bound to the columns of a table.
type program struct {
	op    string
	t     *table.Table
	opts  Options
	env   starlark.StringDict
	fn    *starlark.Function
	bound []string // referenced columns bound as variables
	row   int
	// sawNull records whether the current row handed a None to the
	// expression, through a bound column or col().
	sawNull bool
}

func compile(op string, t *table.Table, src string, opts Options) (*program, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%s: empty expression", op)
	}
	fileOpts := &syntax.FileOptions{}
	parsed, err := fileOpts.ParseExpr(op, src, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: parse %q: %w", op, src, err)
	}
	p := &program{op: op, t: t, opts: opts, env: starlark.StringDict{}}
	p.env["col"] = starlark.NewBuiltin("col", p.col)
	p.env["is_null"] = starlark.NewBuiltin("is_null", isNull)
	used := map[string]bool{}
	syntax.Walk(parsed, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			used[id.Name] = true
		}
		return true
	})
	for _, name := range t.Names() {
		if !used[name] || !table.ValidIdentifier(name) || p.env.Has(name) {
			continue
		}
		p.bound = append(p.bound, name)
		p.env[name] = starlark.None
	}
	// The env map is the function's predeclared scope, so per-row updates
	// to it are visible to later calls.
	p.fn, err = starlark.ExprFuncOptions(fileOpts, op, src, p.env)
	var resolveErrs resolve.ErrorList
	switch {
	case errors.As(err, &resolveErrs):
		return nil, p.resolveError(resolveErrs)
	case err != nil:
		return nil, fmt.Errorf("%s: compile %q: %w", op, src, err)
	}
	return p, nil
}

// eval evaluates the expression against row i. An operation applied to a
// null (None) column value yields None for the whole row instead of an error.
func (p *program) eval(i int) (starlark.Value, error) {
	p.row = i
	p.sawNull = false
	for _, name := range p.bound {
		v, _ := p.t.Row(i).Get(name)
		sv := toStarlark(v)
		if sv == starlark.None {
			p.sawNull = true
		}
		p.env[name] = sv
	}
	thread := &starlark.Thread{Name: p.op}
	thread.SetMaxExecutionSteps(p.opts.maxSteps())
	v, err := starlark.Call(thread, p.fn, nil, nil)
	if err != nil {
		var evalErr *starlark.EvalError
		if p.sawNull && errors.As(err, &evalErr) && strings.Contains(evalErr.Msg, "NoneType") {
			return starlark.None, nil
		}
		return nil, fmt.Errorf("%s: row %d: %w", p.op, i+1, err)
	}
	return v, nil
}

func (p *program) resolveError(list resolve.ErrorList) error {
	for _, e := range list {
		if rest, ok := strings.CutPrefix(e.Msg, "undefined: "); ok {
			name := rest
			if sp := strings.IndexByte(rest, ' '); sp >= 0 {
				name = rest[:sp]
			}
			return &table.IdentifierError{
				Op:            p.op,
				Identifier:    name,
				Reason:        "no column or function with that name",
				Unaddressable: table.Unaddressable(p.t),
			}
		}
	}
	return fmt.Errorf("%s: %w", p.op, list)
}

// col(name) returns the cell of any column, including ones whose names are
// not identifiers.
func (p *program) col(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	if !p.t.Has(name) {
		return nil, &table.ColumnError{Op: "col", Column: name, Reason: "not found", Available: p.t.Names()}
	}
	if p.t.NRow() == 0 {
		return starlark.None, nil
	}
	v, _ := p.t.Row(p.row).Get(name)
	if v.IsNull() {
		p.sawNull = true
	}
	return toStarlark(v), nil
}

func isNull(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	return starlark.Bool(v == starlark.None), nil
}

// toStarlark maps a cell to a Starlark value: null to None, integral numbers
// to int, other numbers to float, text to string.
func toStarlark(v table.Value) starlark.Value {
	if v.IsNull() {
		return starlark.None
	}
	if f, ok := v.Number(); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return starlark.MakeInt64(int64(f))
		}
		return starlark.Float(f)
	}
	return starlark.String(v.String())
}

// fromStarlark maps an expression result back to a cell.
func fromStarlark(v starlark.Value) table.Value {
	switch x := v.(type) {
	case starlark.NoneType:
		return table.Null()
	case starlark.Bool:
		if x {
			return table.Str("true")
		}
		return table.Str("false")
	case starlark.Int, starlark.Float:
		f, _ := starlark.AsFloat(x)
		return table.Num(f)
	case starlark.String:
		return table.Str(string(x))
	}
	return table.Str(v.String())
}
