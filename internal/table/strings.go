package table

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StringOp is one text transform applied by CleanStrings.
type StringOp struct {
	Name string
	fn   func(string) (string, error)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func Trim() StringOp {
	return StringOp{Name: "trim", fn: func(s string) (string, error) { return strings.TrimSpace(s), nil }}
}

// Squish trims and collapses internal whitespace runs to one space.
func Squish() StringOp {
	return StringOp{Name: "squish", fn: func(s string) (string, error) {
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " ")), nil
	}}
}

func Lower() StringOp {
	return StringOp{Name: "lower", fn: func(s string) (string, error) { return cases.Lower(language.Und).String(s), nil }}
}

func Upper() StringOp {
	return StringOp{Name: "upper", fn: func(s string) (string, error) { return cases.Upper(language.Und).String(s), nil }}
}

func Title() StringOp {
	return StringOp{Name: "title", fn: func(s string) (string, error) { return cases.Title(language.Und).String(s), nil }}
}

func StripAccents() StringOp {
	return StringOp{Name: "strip_accents", fn: stripAccents}
}

// Replace substitutes every match of pattern (RE2 syntax) with repl; repl may
// use $1-style group references.
func Replace(pattern, repl string) (StringOp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return StringOp{}, fmt.Errorf("replace: compile %q: %w", pattern, err)
	}
	return StringOp{Name: "replace", fn: func(s string) (string, error) { return re.ReplaceAllString(s, repl), nil }}, nil
}

// ParseStringOp resolves an operation by name. "replace" needs Replace.
func ParseStringOp(name string) (StringOp, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trim":
		return Trim(), nil
	case "squish":
		return Squish(), nil
	case "lower":
		return Lower(), nil
	case "upper":
		return Upper(), nil
	case "title":
		return Title(), nil
	case "strip_accents", "strip-accents", "ascii":
		return StripAccents(), nil
	}
	return StringOp{}, fmt.Errorf("unknown string operation %q (use trim|squish|lower|upper|title|strip_accents)", name)
}

func stripAccents(s string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s, err
	}
	return out, nil
}

func applyOps(s string, ops []StringOp) (string, error) {
	var err error
	for _, op := range ops {
		if s, err = op.fn(s); err != nil {
			return "", fmt.Errorf("%s: %w", op.Name, err)
		}
	}
	return s, nil
}

// CleanStrings applies ops, in order, to every value of the named columns
// (every string and category column when columns is empty). Category levels
// are rewritten too; levels that become equal are merged.
func CleanStrings(t *Table, columns []string, ops ...StringOp) (*Table, error) {
	if len(columns) == 0 {
		for _, c := range t.cols {
			if c.typ != Number {
				columns = append(columns, c.name)
			}
		}
	}
	out := t
	for _, name := range columns {
		c, err := out.Column(name)
		if err != nil {
			return nil, notFound("clean", name, out)
		}
		switch c.typ {
		case Number:
			return nil, &TypeError{Op: "clean", Column: name, Got: c.typ, Want: "string or category"}
		case Category:
			mapped := make(map[string]string, len(c.levels))
			var levels []string
			seen := map[string]bool{}
			for _, l := range c.levels {
				nl, err := applyOps(l, ops)
				if err != nil {
					return nil, fmt.Errorf("clean %q: %w", name, err)
				}
				mapped[l] = nl
				if !seen[nl] {
					seen[nl] = true
					levels = append(levels, nl)
				}
			}
			vals := make([]Value, c.Len())
			for i, v := range c.values {
				if !v.IsNull() {
					vals[i] = Str(mapped[v.str])
				}
			}
			nc, err := NewCategory(name, vals, levels)
			if err != nil {
				return nil, err
			}
			if out, err = out.Mutate(nc); err != nil {
				return nil, err
			}
		default:
			vals := make([]Value, c.Len())
			for i, v := range c.values {
				if v.IsNull() {
					continue
				}
				s, err := applyOps(v.str, ops)
				if err != nil {
					return nil, &ParseError{Column: name, Row: i + 1, Value: v.str, Err: err}
				}
				vals[i] = Str(s)
			}
			nc, _ := NewColumn(name, String, vals)
			if out, err = out.Mutate(nc); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// ParseStringOps resolves a list of operation names. "replace" uses pattern
// and repl; a pattern without a "replace" entry is applied last.
func ParseStringOps(names []string, pattern, repl string) ([]StringOp, error) {
	var ops []StringOp
	replaced := false
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), "replace") {
			if pattern == "" {
				return nil, fmt.Errorf("replace needs a pattern")
			}
			op, err := Replace(pattern, repl)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			replaced = true
			continue
		}
		op, err := ParseStringOp(n)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if pattern != "" && !replaced {
		op, err := Replace(pattern, repl)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("no string operations given")
	}
	return ops, nil
}
