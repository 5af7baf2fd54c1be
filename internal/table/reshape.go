package table

import (
	"fmt"
	"log/slog"
	"strings"
)

// MeltSpec describes a wide to tall reshape.
type MeltSpec struct {
	// ID columns are repeated on every output row.
	ID []string
	// Values are the columns folded into rows; empty means every non-ID column.
	Values []string
	// NamesTo receives the original column name (default "name").
	NamesTo string
	// ValuesTo receives the cell (default "value").
	ValuesTo string
	// DropNulls skips cells that are null.
	DropNulls bool
}

// Melt folds the value columns into (name, value) pairs: one output row per
// input row and value column, in row-major order.
func Melt(t *Table, spec MeltSpec) (*Table, error) {
	namesTo, valuesTo := spec.NamesTo, spec.ValuesTo
	if namesTo == "" {
		namesTo = "name"
	}
	if valuesTo == "" {
		valuesTo = "value"
	}
	if namesTo == valuesTo {
		return nil, &ColumnError{Op: "melt", Column: namesTo, Reason: "used for both names and values"}
	}
	isID := map[string]bool{}
	ids := make([]*Column, 0, len(spec.ID))
	for _, n := range spec.ID {
		c, err := t.Column(n)
		if err != nil {
			return nil, notFound("melt", n, t)
		}
		if n == namesTo || n == valuesTo {
			return nil, &ColumnError{Op: "melt", Column: n, Reason: "clashes with an output column"}
		}
		isID[n] = true
		ids = append(ids, c)
	}
	var vals []*Column
	if len(spec.Values) == 0 {
		for _, c := range t.cols {
			if !isID[c.name] {
				vals = append(vals, c)
			}
		}
	} else {
		for _, n := range spec.Values {
			c, err := t.Column(n)
			if err != nil {
				return nil, notFound("melt", n, t)
			}
			if isID[n] {
				return nil, &ColumnError{Op: "melt", Column: n, Reason: "is both an id and a value column"}
			}
			vals = append(vals, c)
		}
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("melt: no value columns")
	}

	valueType := Number
	for _, c := range vals {
		if c.typ != Number {
			valueType = String
			break
		}
	}

	rowIdx := make([]int, 0, t.nrow*len(vals))
	names := make([]Value, 0, t.nrow*len(vals))
	cells := make([]Value, 0, t.nrow*len(vals))
	for i := 0; i < t.nrow; i++ {
		for _, c := range vals {
			v := c.values[i]
			if spec.DropNulls && v.IsNull() {
				continue
			}
			rowIdx = append(rowIdx, i)
			names = append(names, Str(c.name))
			cells = append(cells, v)
		}
	}

	out := make([]*Column, 0, len(ids)+2)
	for _, c := range ids {
		out = append(out, c.take(rowIdx))
	}
	nameCol, _ := NewColumn(namesTo, String, names)
	valueCol, err := NewColumn(valuesTo, valueType, cells)
	if err != nil {
		return nil, fmt.Errorf("melt: %w", err)
	}
	out = append(out, nameCol, valueCol)
	res, err := New(t.name, out...)
	if err != nil {
		return nil, err
	}
	slog.Debug("melt", slog.Int("rows_in", t.nrow), slog.Int("value_columns", len(vals)), slog.Int("rows_out", res.nrow))
	return res, nil
}

// PivotSpec describes a tall to wide reshape.
type PivotSpec struct {
	// ID columns identify an output row; empty means every column except
	// NamesFrom and ValuesFrom.
	ID         []string
	NamesFrom  string
	ValuesFrom string
}

// Pivot spreads (name, value) pairs back into columns. Output rows follow
// the first appearance of each ID tuple, new columns the first appearance of
// each name. Missing combinations are null.
func Pivot(t *Table, spec PivotSpec) (*Table, error) {
	namesCol, err := t.Column(spec.NamesFrom)
	if err != nil {
		return nil, notFound("pivot", spec.NamesFrom, t)
	}
	valuesCol, err := t.Column(spec.ValuesFrom)
	if err != nil {
		return nil, notFound("pivot", spec.ValuesFrom, t)
	}
	idNames := spec.ID
	if len(idNames) == 0 {
		for _, n := range t.Names() {
			if n != spec.NamesFrom && n != spec.ValuesFrom {
				idNames = append(idNames, n)
			}
		}
	}
	ids := make([]*Column, len(idNames))
	for i, n := range idNames {
		if ids[i], err = t.Column(n); err != nil {
			return nil, notFound("pivot", n, t)
		}
	}

	groupOf := map[string]int{}
	var firstRow []int
	colOf := map[string]int{}
	var newNames []string
	rowGroup := make([]int, t.nrow)
	rowCol := make([]int, t.nrow)
	for i := 0; i < t.nrow; i++ {
		key := tupleKey(ids, i)
		g, ok := groupOf[key]
		if !ok {
			g = len(firstRow)
			groupOf[key] = g
			firstRow = append(firstRow, i)
		}
		nv := namesCol.values[i]
		if nv.IsNull() {
			return nil, &KeyError{Op: "pivot", Left: spec.NamesFrom, Reason: fmt.Sprintf("null name at row %d", i+1)}
		}
		name := nv.String()
		c, ok := colOf[name]
		if !ok {
			c = len(newNames)
			colOf[name] = c
			newNames = append(newNames, name)
		}
		rowGroup[i], rowCol[i] = g, c
	}

	cells := make([][]Value, len(newNames))
	filled := make([][]bool, len(newNames))
	for c := range cells {
		cells[c] = make([]Value, len(firstRow))
		filled[c] = make([]bool, len(firstRow))
	}
	for i := 0; i < t.nrow; i++ {
		g, c := rowGroup[i], rowCol[i]
		if filled[c][g] {
			return nil, &KeyError{
				Op:     "pivot",
				Left:   strings.Join(idNames, ","),
				Reason: fmt.Sprintf("duplicate entry for name %q at row %d", newNames[c], i+1),
			}
		}
		filled[c][g] = true
		cells[c][g] = valuesCol.values[i]
	}

	out := make([]*Column, 0, len(ids)+len(newNames))
	for _, c := range ids {
		out = append(out, c.take(firstRow))
	}
	valueType := valuesCol.typ
	if valueType == Category {
		valueType = String
	}
	for c, name := range newNames {
		if contains(idNames, name) {
			return nil, &ColumnError{Op: "pivot", Column: name, Reason: "clashes with an id column"}
		}
		col, err := NewColumn(name, valueType, cells[c])
		if err != nil {
			return nil, fmt.Errorf("pivot: %w", err)
		}
		out = append(out, col)
	}
	return New(t.name, out...)
}

// tupleKey encodes the values of cols at row i into a map key. Null and
// the empty string encode differently.
func tupleKey(cols []*Column, i int) string {
	var b strings.Builder
	for _, c := range cols {
		v := c.values[i]
		switch v.kind {
		case nullValue:
			b.WriteString("\x00N")
		case numberValue:
			b.WriteString("\x00F")
			b.WriteString(v.String())
		default:
			b.WriteString("\x00S")
			b.WriteString(v.str)
		}
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
