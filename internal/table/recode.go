package table

import (
	"fmt"
	"sort"
)

// CutSpec bins a numeric column into labelled intervals.
type CutSpec struct {
	Column string
	// Into names the result column; empty replaces Column.
	Into string
	// Breaks must be strictly increasing; len(Labels) == len(Breaks)+1.
	Breaks []float64
	Labels []string
	// Right makes intervals right-closed: b(i-1) < x <= b(i).
	Right bool
}

// Cut maps every value of a numeric column to the label of its interval. The
// result is a category column whose levels follow label order.
func Cut(t *Table, spec CutSpec) (*Table, error) {
	src, err := t.Column(spec.Column)
	if err != nil {
		return nil, notFound("recode", spec.Column, t)
	}
	if src.typ != Number {
		return nil, &TypeError{Op: "recode", Column: spec.Column, Got: src.typ, Want: "number"}
	}
	if len(spec.Breaks) == 0 {
		return nil, fmt.Errorf("recode: at least one break is required")
	}
	if len(spec.Labels) != len(spec.Breaks)+1 {
		return nil, fmt.Errorf("recode: %d breaks need %d labels, got %d", len(spec.Breaks), len(spec.Breaks)+1, len(spec.Labels))
	}
	for i := 1; i < len(spec.Breaks); i++ {
		if spec.Breaks[i] <= spec.Breaks[i-1] {
			return nil, fmt.Errorf("recode: breaks must be strictly increasing (%s after %s)", FormatNumber(spec.Breaks[i]), FormatNumber(spec.Breaks[i-1]))
		}
	}
	into := spec.Into
	if into == "" {
		into = spec.Column
	}

	vals := make([]Value, src.Len())
	for i, v := range src.values {
		x, ok := v.Number()
		if !ok {
			continue
		}
		var bin int
		if spec.Right {
			// first break >= x
			bin = sort.SearchFloat64s(spec.Breaks, x)
		} else {
			// first break > x
			bin = sort.Search(len(spec.Breaks), func(k int) bool { return spec.Breaks[k] > x })
		}
		vals[i] = Str(spec.Labels[bin])
	}
	col, err := NewCategory(into, vals, spec.Labels)
	if err != nil {
		return nil, fmt.Errorf("recode: %w", err)
	}
	return t.Mutate(col)
}

// Threshold labels values below cut as below and the rest as above.
func Threshold(t *Table, column, into string, cut float64, below, above string) (*Table, error) {
	return Cut(t, CutSpec{Column: column, Into: into, Breaks: []float64{cut}, Labels: []string{below, above}})
}
