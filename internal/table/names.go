package table

import (
	"strconv"
	"strings"
	"unicode"
)

// Reserved words of the expression language; none can name a variable.
var reserved = map[string]bool{
	"and": true, "break": true, "continue": true, "def": true, "elif": true, "else": true,
	"for": true, "if": true, "in": true, "lambda": true, "load": true, "not": true, "or": true,
	"pass": true, "return": true, "while": true,
	"as": true, "assert": true, "async": true, "await": true, "class": true, "del": true,
	"except": true, "finally": true, "from": true, "global": true, "import": true, "is": true,
	"nonlocal": true, "raise": true, "try": true, "with": true, "yield": true,
	"True": true, "False": true, "None": true,
}

// ValidIdentifier reports whether name can be used as a variable in filter and
// mutate expressions.
func ValidIdentifier(name string) bool {
	if name == "" || reserved[name] {
		return false
	}
	for i, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// Unaddressable lists the column names of t that are not valid identifiers.
func Unaddressable(t *Table) []string {
	var out []string
	for _, n := range t.Names() {
		if !ValidIdentifier(n) {
			out = append(out, n)
		}
	}
	return out
}

// CleanName turns an arbitrary header into a snake_case identifier.
func CleanName(name string) string {
	s, err := stripAccents(strings.TrimSpace(name))
	if err != nil {
		s = strings.TrimSpace(name)
	}
	var b strings.Builder
	prevUnderscore := true
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			if prevLower && !prevUnderscore {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore, prevLower = false, false
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevUnderscore = false
			prevLower = r >= 'a' && r <= 'z'
		case r == '%':
			if !prevUnderscore {
				b.WriteByte('_')
			}
			b.WriteString("percent_")
			prevUnderscore, prevLower = true, false
		default:
			if !prevUnderscore {
				b.WriteByte('_')
			}
			prevUnderscore, prevLower = true, false
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "x"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "x" + out
	}
	if reserved[out] {
		out += "_"
	}
	return out
}

// CleanNames rewrites every column name with CleanName. Clashes get numeric
// suffixes (_2, _3, ...) in column order.
func CleanNames(t *Table) *Table {
	taken := map[string]bool{}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		base := CleanName(c.name)
		name := base
		for n := 2; taken[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		taken[name] = true
		cols[i] = c.withName(name)
	}
	return t.rebuild(cols, t.nrow)
}
