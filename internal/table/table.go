// Package table holds the in-memory columnar table used by every cleaning
// operation. Columns are addressed by string name, so empty names and names
// that are not identifiers remain usable.
package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Table is an ordered collection of equally long, uniquely named columns.
// Operations never modify their receiver; they return a new Table.
type Table struct {
	name string
	nrow int
	cols []*Column
	pos  map[string]int
}

// New assembles a table from columns. All columns must have the same length
// and distinct names.
func New(name string, cols ...*Column) (*Table, error) {
	t := &Table{name: name, pos: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("new table: column %d is nil", i)
		}
		if i == 0 {
			t.nrow = c.Len()
		} else if c.Len() != t.nrow {
			return nil, &ShapeError{Op: "new table", Column: c.name, Want: t.nrow, Got: c.Len()}
		}
		if _, dup := t.pos[c.name]; dup {
			return nil, &ColumnError{Op: "new table", Column: c.name, Reason: "already exists"}
		}
		t.pos[c.name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New for statically known inputs; it panics on error.
func MustNew(name string, cols ...*Column) *Table {
	t, err := New(name, cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Name() string { return t.name }
func (t *Table) NRow() int    { return t.nrow }
func (t *Table) NCol() int    { return len(t.cols) }

// WithName returns a shallow copy carrying a different display name.
func (t *Table) WithName(name string) *Table {
	out := *t
	out.name = name
	return &out
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.cols...)
}

// Has reports whether a column with that exact name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.pos[name]
	return ok
}

// Column looks a column up by its exact name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.pos[name]
	if !ok {
		return nil, notFound("column", name, t)
	}
	return t.cols[i], nil
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Row returns the i-th row (0-based).
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Index returns the 0-based row position.
func (r Row) Index() int { return r.i }

// Get returns the cell of the named column.
func (r Row) Get(name string) (Value, bool) {
	j, ok := r.t.pos[name]
	if !ok {
		return Value{}, false
	}
	return r.t.cols[j].values[r.i], true
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.clone()
	}
	return t.rebuild(cols, t.nrow)
}

func (t *Table) rebuild(cols []*Column, nrow int) *Table {
	out := &Table{name: t.name, nrow: nrow, cols: cols, pos: make(map[string]int, len(cols))}
	for i, c := range cols {
		out.pos[c.name] = i
	}
	return out
}

// Select keeps the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, notFound("select", n, t)
		}
		if seen[n] {
			return nil, &ColumnError{Op: "select", Column: n, Reason: "selected twice"}
		}
		seen[n] = true
		cols = append(cols, c)
	}
	return t.rebuild(cols, t.nrow), nil
}

// Drop removes the named columns.
func (t *Table) Drop(names ...string) (*Table, error) {
	skip := map[string]bool{}
	for _, n := range names {
		if !t.Has(n) {
			return nil, notFound("drop", n, t)
		}
		skip[n] = true
	}
	cols := make([]*Column, 0, len(t.cols))
	for _, c := range t.cols {
		if !skip[c.name] {
			cols = append(cols, c)
		}
	}
	return t.rebuild(cols, t.nrow), nil
}

// Rename replaces one column name with another. The source name may be empty.
func (t *Table) Rename(from, to string) (*Table, error) {
	i, ok := t.pos[from]
	if !ok {
		return nil, notFound("rename", from, t)
	}
	if to == "" {
		return nil, &IdentifierError{Op: "rename", Identifier: to, Reason: "new column name must not be empty"}
	}
	if from == to {
		return t, nil
	}
	if t.Has(to) {
		return nil, &ColumnError{Op: "rename", Column: to, Reason: "already exists"}
	}
	cols := append([]*Column(nil), t.cols...)
	cols[i] = cols[i].withName(to)
	return t.rebuild(cols, t.nrow), nil
}

// Filter keeps the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) (bool, error)) (*Table, error) {
	idx := make([]int, 0, t.nrow)
	for i := 0; i < t.nrow; i++ {
		ok, err := keep(Row{t: t, i: i})
		if err != nil {
			return nil, err
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return t.Take(idx), nil
}

// Mutate adds c, or replaces the column of the same name in place.
func (t *Table) Mutate(c *Column) (*Table, error) {
	if c == nil {
		return nil, errors.New("mutate: nil column")
	}
	if len(t.cols) > 0 && c.Len() != t.nrow {
		return nil, &ShapeError{Op: "mutate", Column: c.name, Want: t.nrow, Got: c.Len()}
	}
	cols := append([]*Column(nil), t.cols...)
	if i, ok := t.pos[c.name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return t.rebuild(cols, c.Len()), nil
}

// Take returns the rows at the given positions, in that order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(idx)
	}
	return t.rebuild(cols, len(idx))
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n > t.nrow {
		n = t.nrow
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Take(idx)
}

// Order is one sort key for Arrange.
type Order struct {
	Column string
	Desc   bool
}

// ParseOrder reads sort keys; a leading "-" sorts that column descending.
func ParseOrder(specs []string) []Order {
	out := make([]Order, len(specs))
	for i, s := range specs {
		if strings.HasPrefix(s, "-") {
			out[i] = Order{Column: s[1:], Desc: true}
			continue
		}
		out[i] = Order{Column: s}
	}
	return out
}

// Arrange sorts rows stably by the given keys. Nulls sort last in both
// directions.
func (t *Table) Arrange(by ...Order) (*Table, error) {
	keys := make([]*Column, len(by))
	for i, o := range by {
		c, err := t.Column(o.Column)
		if err != nil {
			return nil, notFound("arrange", o.Column, t)
		}
		keys[i] = c
	}
	idx := make([]int, t.nrow)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for k, c := range keys {
			va, vb := c.values[idx[a]], c.values[idx[b]]
			if va.IsNull() || vb.IsNull() {
				if va.IsNull() == vb.IsNull() {
					continue
				}
				return vb.IsNull()
			}
			var cmp int
			if c.typ == Category {
				cmp = c.index[va.str] - c.index[vb.str]
			} else {
				cmp = compare(va, vb)
			}
			if cmp == 0 {
				continue
			}
			if by[k].Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return t.Take(idx), nil
}

// Records renders the table as a header record followed by one record per
// row; null cells become nullString.
func (t *Table) Records(nullString string) [][]string {
	out := make([][]string, 0, t.nrow+1)
	out = append(out, t.Names())
	for i := 0; i < t.nrow; i++ {
		rec := make([]string, len(t.cols))
		for j, c := range t.cols {
			v := c.values[i]
			if v.IsNull() {
				rec[j] = nullString
			} else {
				rec[j] = v.String()
			}
		}
		out = append(out, rec)
	}
	return out
}
