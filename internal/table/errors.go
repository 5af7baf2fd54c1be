package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoKeys indicates a join was requested without a key mapping and the two
// tables share no identically named column.
var ErrNoKeys = errors.New("no join keys")

// ParseError reports a value that could not be read as the requested type.
type ParseError struct {
	Source string // file or table name (optional)
	Column string
	Row    int    // 1-based data row, 0 when unknown
	Value  string // offending token
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	var parts []string
	if e.Source != "" {
		parts = append(parts, e.Source)
	}
	if e.Row > 0 {
		parts = append(parts, fmt.Sprintf("row %d", e.Row))
	}
	if e.Column != "" || e.Row > 0 {
		parts = append(parts, fmt.Sprintf("column %q", e.Column))
	}
	msg := "parse error"
	if len(parts) > 0 {
		msg += " at " + strings.Join(parts, ", ")
	}
	if e.Value != "" {
		msg += fmt.Sprintf(": value %q", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// KeyError reports a missing or ambiguous key in a join or pivot.
type KeyError struct {
	Op     string
	Left   string // key column on the left table (or the pivot id)
	Right  string
	Reason string
	Err    error
}

func (e *KeyError) Error() string {
	msg := e.Op + ": key error"
	switch {
	case e.Left != "" && e.Right != "":
		msg += fmt.Sprintf(" (%q = %q)", e.Left, e.Right)
	case e.Left != "":
		msg += fmt.Sprintf(" (%q)", e.Left)
	case e.Right != "":
		msg += fmt.Sprintf(" (%q)", e.Right)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil && e.Reason == "" {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *KeyError) Unwrap() error { return e.Err }

// IdentifierError reports a column that cannot be addressed by name in an
// expression, or a name that is not usable as a column name.
type IdentifierError struct {
	Op         string
	Identifier string
	Reason     string
	// Unaddressable lists columns whose names are not valid identifiers.
	Unaddressable []string
}

func (e *IdentifierError) Error() string {
	msg := fmt.Sprintf("%s: invalid identifier %q", e.Op, e.Identifier)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.Unaddressable) > 0 {
		quoted := make([]string, len(e.Unaddressable))
		for i, n := range e.Unaddressable {
			quoted[i] = fmt.Sprintf("%q", n)
		}
		msg += fmt.Sprintf(" (columns not addressable by name: %s; rename them or use col(\"name\"))", strings.Join(quoted, ", "))
	}
	return msg
}

// ColumnError reports an unknown or duplicate column name.
type ColumnError struct {
	Op        string
	Column    string
	Reason    string   // "not found", "already exists", ...
	Available []string // set for "not found"
}

func (e *ColumnError) Error() string {
	msg := fmt.Sprintf("%s: column %q %s", e.Op, e.Column, e.Reason)
	if len(e.Available) > 0 {
		quoted := make([]string, len(e.Available))
		for i, n := range e.Available {
			quoted[i] = fmt.Sprintf("%q", n)
		}
		msg += "; available: " + strings.Join(quoted, ", ")
	}
	return msg
}

// ShapeError reports columns of unequal length.
type ShapeError struct {
	Op     string
	Column string
	Want   int
	Got    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: column %q has %d rows, want %d", e.Op, e.Column, e.Got, e.Want)
}

// TypeError reports an operation applied to a column of the wrong type.
type TypeError struct {
	Op     string
	Column string
	Got    Type
	Want   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: column %q is %s, want %s", e.Op, e.Column, e.Got, e.Want)
}

func notFound(op, name string, t *Table) *ColumnError {
	return &ColumnError{Op: op, Column: name, Reason: "not found", Available: t.Names()}
}
