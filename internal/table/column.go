package table

import (
	"fmt"
	"strings"
)

// Type is the element type of a column.
type Type uint8

const (
	String Type = iota
	Number
	Category
)

func (t Type) String() string {
	switch t {
	case Number:
		return "number"
	case Category:
		return "category"
	default:
		return "string"
	}
}

// ParseType maps a type name ("string", "number", "category" and a few
// aliases) to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str", "text", "character", "chr":
		return String, nil
	case "number", "numeric", "num", "float", "double", "dbl", "int", "integer":
		return Number, nil
	case "category", "factor", "fct", "categorical":
		return Category, nil
	}
	return String, fmt.Errorf("unknown column type %q (use string|number|category)", s)
}

// Column is a named, homogeneous sequence of values.
type Column struct {
	name   string
	typ    Type
	values []Value
	// category only
	levels []string
	index  map[string]int
}

// NewColumn builds a column of the given type. Numbers placed in a string or
// category column are stored as their text; strings in a number column are an
// error. Category levels follow first appearance.
func NewColumn(name string, typ Type, values []Value) (*Column, error) {
	c := &Column{name: name, typ: typ, values: make([]Value, len(values))}
	for i, v := range values {
		switch {
		case v.IsNull():
			c.values[i] = v
		case typ == Number:
			if !v.IsNumber() {
				return nil, &ParseError{Column: name, Row: i + 1, Value: v.String(), Reason: "not a number"}
			}
			c.values[i] = v
		default:
			c.values[i] = Str(v.String())
		}
	}
	if typ == Category {
		c.index = map[string]int{}
		for _, v := range c.values {
			if v.IsNull() {
				continue
			}
			if _, ok := c.index[v.str]; !ok {
				c.index[v.str] = len(c.levels)
				c.levels = append(c.levels, v.str)
			}
		}
	}
	return c, nil
}

// NewCategory builds a category column with explicit levels. Every non-null
// label must be one of the levels.
func NewCategory(name string, values []Value, levels []string) (*Column, error) {
	c := &Column{name: name, typ: Category, values: make([]Value, len(values)), index: make(map[string]int, len(levels))}
	for _, l := range levels {
		if _, dup := c.index[l]; dup {
			return nil, fmt.Errorf("category %q: duplicate level %q", name, l)
		}
		c.index[l] = len(c.levels)
		c.levels = append(c.levels, l)
	}
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		s := v.String()
		if _, ok := c.index[s]; !ok {
			return nil, &ParseError{Column: name, Row: i + 1, Value: s, Reason: "not one of the category levels"}
		}
		c.values[i] = Str(s)
	}
	return c, nil
}

// Strings builds a string column; no value is null.
func Strings(name string, vals ...string) *Column {
	c := &Column{name: name, typ: String, values: make([]Value, len(vals))}
	for i, s := range vals {
		c.values[i] = Str(s)
	}
	return c
}

// Numbers builds a number column; NaN entries become null.
func Numbers(name string, vals ...float64) *Column {
	c := &Column{name: name, typ: Number, values: make([]Value, len(vals))}
	for i, f := range vals {
		c.values[i] = Num(f)
	}
	return c
}

// Categories builds a category column with first-appearance levels.
func Categories(name string, labels ...string) *Column {
	vals := make([]Value, len(labels))
	for i, s := range labels {
		vals[i] = Str(s)
	}
	c, _ := NewColumn(name, Category, vals)
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Type() Type   { return c.typ }
func (c *Column) Len() int     { return len(c.values) }

// Value returns the i-th cell.
func (c *Column) Value(i int) Value { return c.values[i] }

// Values returns a copy of all cells.
func (c *Column) Values() []Value {
	out := make([]Value, len(c.values))
	copy(out, c.values)
	return out
}

// Levels returns the category levels in code order (nil for other types).
func (c *Column) Levels() []string {
	if c.typ != Category {
		return nil
	}
	out := make([]string, len(c.levels))
	copy(out, c.levels)
	return out
}

// Code returns the 1-based level code of the i-th cell, 0 when null or when
// the column is not a category.
func (c *Column) Code(i int) int {
	if c.typ != Category || c.values[i].IsNull() {
		return 0
	}
	return c.index[c.values[i].str] + 1
}

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

func (c *Column) clone() *Column {
	out := &Column{name: c.name, typ: c.typ, values: make([]Value, len(c.values))}
	copy(out.values, c.values)
	if c.typ == Category {
		out.levels = append([]string(nil), c.levels...)
		out.index = make(map[string]int, len(c.index))
		for k, v := range c.index {
			out.index[k] = v
		}
	}
	return out
}

func (c *Column) withName(name string) *Column {
	out := c.clone()
	out.name = name
	return out
}

// take builds a column from the cells at idx; -1 yields null.
func (c *Column) take(idx []int) *Column {
	out := &Column{name: c.name, typ: c.typ, values: make([]Value, len(idx))}
	for i, j := range idx {
		if j >= 0 {
			out.values[i] = c.values[j]
		}
	}
	if c.typ == Category {
		out.levels = append([]string(nil), c.levels...)
		out.index = make(map[string]int, len(c.index))
		for k, v := range c.index {
			out.index[k] = v
		}
	}
	return out
}
