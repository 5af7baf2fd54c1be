package table

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// NumberMode selects how AsNumber treats category columns.
type NumberMode uint8

const (
	// ByLabel parses each category label as a number.
	ByLabel NumberMode = iota
	// ByCode yields the 1-based level code.
	ByCode
)

// ParseNumberMode maps "labels" or "codes" to a NumberMode.
func ParseNumberMode(s string) (NumberMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "labels", "label":
		return ByLabel, nil
	case "codes", "code", "ordinal":
		return ByCode, nil
	}
	return ByLabel, fmt.Errorf("unknown conversion mode %q (use codes|labels)", s)
}

// ParseNumber reads s as a finite decimal number. NaN and Inf are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// AsNumber converts a column to number. Unparsable text is a ParseError unless
// coerce is set, in which case it becomes null.
func AsNumber(t *Table, column string, mode NumberMode, coerce bool) (*Table, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, notFound("convert", column, t)
	}
	if c.typ == Number {
		return t, nil
	}
	vals := make([]Value, c.Len())
	failed := 0
	for i, v := range c.values {
		if v.IsNull() {
			continue
		}
		if c.typ == Category && mode == ByCode {
			vals[i] = Num(float64(c.Code(i)))
			continue
		}
		f, ok := ParseNumber(v.str)
		if !ok {
			if !coerce {
				return nil, &ParseError{Source: t.name, Column: column, Row: i + 1, Value: v.str, Reason: "not a number"}
			}
			failed++
			continue
		}
		vals[i] = Num(f)
	}
	if failed > 0 {
		slog.Warn("values coerced to null", slog.String("column", column), slog.Int("count", failed))
	}
	nc, err := NewColumn(column, Number, vals)
	if err != nil {
		return nil, err
	}
	return t.Mutate(nc)
}

// AsString converts a column to string. Category labels become plain text.
func AsString(t *Table, column string) (*Table, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, notFound("convert", column, t)
	}
	if c.typ == String {
		return t, nil
	}
	nc, err := NewColumn(column, String, c.values)
	if err != nil {
		return nil, err
	}
	return t.Mutate(nc)
}

// AsCategory converts a column to category. With no levels, levels follow
// first appearance; with explicit levels, any other value is a ParseError.
func AsCategory(t *Table, column string, levels []string) (*Table, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, notFound("convert", column, t)
	}
	var nc *Column
	if len(levels) == 0 {
		if c.typ == Category {
			return t, nil
		}
		nc, err = NewColumn(column, Category, c.values)
	} else {
		nc, err = NewCategory(column, c.values, levels)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = t.name
		}
		return nil, err
	}
	return t.Mutate(nc)
}

// Convert dispatches to AsNumber, AsString or AsCategory.
func Convert(t *Table, column string, to Type, mode NumberMode, coerce bool, levels []string) (*Table, error) {
	switch to {
	case Number:
		return AsNumber(t, column, mode, coerce)
	case Category:
		return AsCategory(t, column, levels)
	default:
		return AsString(t, column)
	}
}
