package table

import (
	"fmt"
	"log/slog"
	"strings"
)

// JoinKind selects which unmatched rows a join keeps.
type JoinKind uint8

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
)

func (k JoinKind) String() string {
	switch k {
	case LeftJoin:
		return "left"
	case RightJoin:
		return "right"
	case FullJoin:
		return "full"
	default:
		return "inner"
	}
}

// ParseJoinKind maps "inner", "left", "right" or "full" (also "outer") to a
// JoinKind.
func ParseJoinKind(s string) (JoinKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inner", "":
		return InnerJoin, nil
	case "left":
		return LeftJoin, nil
	case "right":
		return RightJoin, nil
	case "full", "outer", "full_outer":
		return FullJoin, nil
	}
	return InnerJoin, fmt.Errorf("unknown join kind %q (use inner|left|right|full)", s)
}

// KeyPair maps a key column of the left table to one of the right table.
type KeyPair struct {
	Left  string `yaml:"left" json:"left"`
	Right string `yaml:"right" json:"right"`
}

// ParseKeys reads "left=right" pairs; a bare "name" maps name to itself.
func ParseKeys(specs []string) ([]KeyPair, error) {
	out := make([]KeyPair, 0, len(specs))
	for _, s := range specs {
		l, r, ok := strings.Cut(s, "=")
		if !ok {
			r = l
		}
		if l == "" && r == "" && s != "=" {
			return nil, fmt.Errorf("invalid key mapping %q (use left=right)", s)
		}
		out = append(out, KeyPair{Left: l, Right: r})
	}
	return out, nil
}

// JoinSpec configures Join.
type JoinSpec struct {
	Kind JoinKind
	// Keys maps left to right key columns. Empty means every column name the
	// two tables share.
	Keys []KeyPair
	// Suffixes disambiguate non-key columns present on both sides
	// (default ".x" and ".y").
	Suffixes [2]string
}

// Join combines two tables on a key mapping. Nulls never match; non-unique
// keys yield every matching pair. Rows follow the left table, with unmatched
// right rows appended for right and full joins.
func Join(left, right *Table, spec JoinSpec) (*Table, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("join: nil table")
	}
	keys := spec.Keys
	if len(keys) == 0 {
		for _, n := range left.Names() {
			if right.Has(n) {
				keys = append(keys, KeyPair{Left: n, Right: n})
			}
		}
		if len(keys) == 0 {
			return nil, &KeyError{
				Op:     "join",
				Reason: fmt.Sprintf("no key mapping given and %s and %s share no column name; pass keys as left=right", label(left, "left"), label(right, "right")),
				Err:    ErrNoKeys,
			}
		}
		slog.Info("joining by shared column names", slog.Any("keys", keys))
	}
	sx, sy := spec.Suffixes[0], spec.Suffixes[1]
	if sx == "" && sy == "" {
		sx, sy = ".x", ".y"
	}

	lkeys := make([]*Column, len(keys))
	rkeys := make([]*Column, len(keys))
	isLeftKey := map[string]bool{}
	isRightKey := map[string]bool{}
	for i, k := range keys {
		lc, err := left.Column(k.Left)
		if err != nil {
			return nil, &KeyError{Op: "join", Left: k.Left, Right: k.Right, Reason: fmt.Sprintf("column %q not found in %s", k.Left, label(left, "left table"))}
		}
		rc, err := right.Column(k.Right)
		if err != nil {
			return nil, &KeyError{Op: "join", Left: k.Left, Right: k.Right, Reason: fmt.Sprintf("column %q not found in %s", k.Right, label(right, "right table"))}
		}
		lkeys[i], rkeys[i] = lc, rc
		isLeftKey[k.Left] = true
		isRightKey[k.Right] = true
	}

	// Hash index on the right table.
	index := make(map[string][]int, right.nrow)
	for j := 0; j < right.nrow; j++ {
		if k, ok := joinKey(rkeys, j); ok {
			index[k] = append(index[k], j)
		}
	}

	var li, ri []int
	matchedRight := make([]bool, right.nrow)
	unmatchedLeft := 0
	for i := 0; i < left.nrow; i++ {
		var matches []int
		if k, ok := joinKey(lkeys, i); ok {
			matches = index[k]
		}
		if len(matches) == 0 {
			unmatchedLeft++
			if spec.Kind == LeftJoin || spec.Kind == FullJoin {
				li = append(li, i)
				ri = append(ri, -1)
			}
			continue
		}
		for _, j := range matches {
			matchedRight[j] = true
			li = append(li, i)
			ri = append(ri, j)
		}
	}
	unmatchedRight := 0
	for j, m := range matchedRight {
		if m {
			continue
		}
		unmatchedRight++
		if spec.Kind == RightJoin || spec.Kind == FullJoin {
			li = append(li, -1)
			ri = append(ri, j)
		}
	}

	leftNames := map[string]bool{}
	for _, n := range left.Names() {
		leftNames[n] = true
	}
	clash := map[string]bool{}
	for _, c := range right.cols {
		if !isRightKey[c.name] && leftNames[c.name] {
			clash[c.name] = true
		}
	}

	cols := make([]*Column, 0, left.NCol()+right.NCol())
	for _, c := range left.cols {
		if isLeftKey[c.name] {
			var rc *Column
			for i, k := range keys {
				if k.Left == c.name {
					rc = rkeys[i]
					break
				}
			}
			kc, err := coalesceKey(c, rc, li, ri)
			if err != nil {
				return nil, fmt.Errorf("join: %w", err)
			}
			cols = append(cols, kc)
			continue
		}
		nc := c.take(li)
		if clash[c.name] {
			nc.name += sx
		}
		cols = append(cols, nc)
	}
	for _, c := range right.cols {
		if isRightKey[c.name] {
			continue
		}
		nc := c.take(ri)
		if clash[c.name] {
			nc.name += sy
		}
		cols = append(cols, nc)
	}
	out, err := New(left.name, cols...)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	slog.Info("join completed",
		slog.String("kind", spec.Kind.String()),
		slog.Int("left_rows", left.nrow),
		slog.Int("right_rows", right.nrow),
		slog.Int("result_rows", out.nrow),
		slog.Int("unmatched_left_rows", unmatchedLeft),
		slog.Int("unmatched_right_rows", unmatchedRight),
	)
	return out, nil
}

// joinKey encodes the key cells of row i by their text form; ok is false
// when any key cell is null.
func joinKey(cols []*Column, i int) (string, bool) {
	var b strings.Builder
	for _, c := range cols {
		v := c.values[i]
		if v.IsNull() {
			return "", false
		}
		b.WriteByte(0)
		b.WriteString(v.String())
	}
	return b.String(), true
}

// coalesceKey builds an output key column: the left cell where the row came
// from the left table, the right cell otherwise. The left column type is kept
// unless some row takes its key from the right.
func coalesceKey(lc, rc *Column, li, ri []int) (*Column, error) {
	vals := make([]Value, len(li))
	fromRight := false
	for k := range li {
		if li[k] >= 0 {
			vals[k] = lc.values[li[k]]
		} else {
			vals[k] = rc.values[ri[k]]
			fromRight = true
		}
	}
	if !fromRight {
		return lc.take(li), nil
	}
	switch {
	case lc.typ == Category && rc.typ == Category:
		levels := append([]string(nil), lc.levels...)
		for _, l := range rc.levels {
			if _, ok := lc.index[l]; !ok {
				levels = append(levels, l)
			}
		}
		return NewCategory(lc.name, vals, levels)
	case lc.typ == rc.typ:
		return NewColumn(lc.name, lc.typ, vals)
	default:
		return NewColumn(lc.name, String, vals)
	}
}

func label(t *Table, fallback string) string {
	if t.name != "" {
		return fmt.Sprintf("table %q", t.name)
	}
	return fallback
}
