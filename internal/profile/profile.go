// Package profile summarizes a table as a Markdown report: schema, numeric
// statistics, category levels, group-by summaries, sample rows, and notes on
// columns that are awkward to work with.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// Options controls what a report includes.
type Options struct {
	// SampleRows determines how many head rows to include (0 = 5, negative
	// disables samples).
	SampleRows int
	// GroupBy computes per-group numeric summaries for the given columns.
	GroupBy []string
	// TopLevels caps the category levels listed per column (0 = 5).
	TopLevels int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// NullString renders null cells in sample rows.
	NullString string
}

// DefaultOptions returns reasonable defaults.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopLevels: 5}
}

// Report is a markdown-friendly profile of a table.
type Report struct {
	Name    string
	Rows    int
	Cols    []ColumnSummary
	Samples [][]string
	Groups  []GroupResult
	Pairs   []PairCorr
	Notes   []string
}

// ColumnSummary captures type and statistics per column.
type ColumnSummary struct {
	Name    string
	Type    table.Type
	NonNull int
	Missing int
	Unique  int
	// number columns
	Min, Max, Mean, Std, Median float64
	// category columns, in descending count
	TopLevels []LevelCount
	// string columns
	Examples []string
}

type LevelCount struct {
	Label string
	Count int
}

// GroupResult summarizes the numeric columns of one group.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// PairCorr is one correlation pair.
type PairCorr struct {
	A, B string
	R    float64
	N    int
}

// Build profiles t.
func Build(t *table.Table, opt Options) (*Report, error) {
	if opt.SampleRows == 0 {
		opt.SampleRows = 5
	}
	if opt.TopLevels <= 0 {
		opt.TopLevels = 5
	}
	rep := &Report{Name: t.Name(), Rows: t.NRow()}
	for _, c := range t.Columns() {
		rep.Cols = append(rep.Cols, summarize(c, opt))
	}
	head := t.Head(opt.SampleRows).Records(opt.NullString)
	rep.Samples = head[1:]

	if len(opt.GroupBy) > 0 {
		groups, err := groupBy(t, opt.GroupBy)
		if err != nil {
			return nil, err
		}
		rep.Groups = groups
	}
	if opt.Correlations {
		rep.Pairs = correlations(t)
	}
	rep.Notes = notes(t, rep.Cols)
	return rep, nil
}

func summarize(c *table.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name(), Type: c.Type()}
	counts := map[string]int{}
	var nums []float64
	for _, v := range c.Values() {
		if v.IsNull() {
			s.Missing++
			continue
		}
		s.NonNull++
		counts[v.String()]++
		if f, ok := v.Number(); ok {
			nums = append(nums, f)
		}
	}
	s.Unique = len(counts)
	switch c.Type() {
	case table.Number:
		if len(nums) > 0 {
			sr := series.Floats(nums)
			s.Min, s.Max, s.Mean, s.Median = sr.Min(), sr.Max(), sr.Mean(), sr.Median()
			if len(nums) > 1 {
				s.Std = sr.StdDev()
			}
		}
	case table.Category:
		for _, l := range c.Levels() {
			s.TopLevels = append(s.TopLevels, LevelCount{Label: l, Count: counts[l]})
		}
		sort.SliceStable(s.TopLevels, func(i, j int) bool { return s.TopLevels[i].Count > s.TopLevels[j].Count })
		if len(s.TopLevels) > opt.TopLevels {
			s.TopLevels = s.TopLevels[:opt.TopLevels]
		}
	default:
		for _, v := range c.Values() {
			if v.IsNull() {
				continue
			}
			s.Examples = append(s.Examples, v.String())
			if len(s.Examples) == 3 {
				break
			}
		}
	}
	return s
}

func groupBy(t *table.Table, by []string) ([]GroupResult, error) {
	keys := make([]*table.Column, len(by))
	for i, name := range by {
		c, err := t.Column(name)
		if err != nil {
			return nil, &table.ColumnError{Op: "group by", Column: name, Reason: "not found", Available: t.Names()}
		}
		keys[i] = c
	}
	var numeric []*table.Column
	for _, c := range t.Columns() {
		if c.Type() == table.Number && !containsCol(keys, c) {
			numeric = append(numeric, c)
		}
	}
	index := map[string]int{}
	var out []GroupResult
	for i := 0; i < t.NRow(); i++ {
		parts := make([]string, len(keys))
		for k, c := range keys {
			v := c.Value(i)
			val := v.String()
			if v.IsNull() {
				val = "NA"
			}
			parts[k] = fmt.Sprintf("%s=%s", displayName(c.Name()), safeVal(val))
		}
		key := strings.Join(parts, " | ")
		g, ok := index[key]
		if !ok {
			g = len(out)
			index[key] = g
			out = append(out, GroupResult{Key: key, Metrics: map[string]NumSummary{}})
		}
		out[g].Size++
		for _, c := range numeric {
			f, ok := c.Value(i).Number()
			if !ok {
				continue
			}
			m, seen := out[g].Metrics[c.Name()]
			if !seen {
				m = NumSummary{Min: f, Max: f}
			}
			m.Count++
			m.Mean += (f - m.Mean) / float64(m.Count)
			m.Min = math.Min(m.Min, f)
			m.Max = math.Max(m.Max, f)
			out[g].Metrics[c.Name()] = m
		}
	}
	return out, nil
}

// correlations returns Pearson r over pairwise complete rows, strongest first.
func correlations(t *table.Table) []PairCorr {
	var numeric []*table.Column
	for _, c := range t.Columns() {
		if c.Type() == table.Number {
			numeric = append(numeric, c)
		}
	}
	var pairs []PairCorr
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			var xs, ys []float64
			for r := 0; r < t.NRow(); r++ {
				x, okx := numeric[i].Value(r).Number()
				y, oky := numeric[j].Value(r).Number()
				if okx && oky {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			if len(xs) < 3 {
				continue
			}
			r, ok := pearson(xs, ys)
			if !ok {
				continue
			}
			pairs = append(pairs, PairCorr{A: numeric[i].Name(), B: numeric[j].Name(), R: r, N: len(xs)})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return math.Abs(pairs[a].R) > math.Abs(pairs[b].R) })
	return pairs
}

func pearson(xs, ys []float64) (float64, bool) {
	mx, my := series.Floats(xs).Mean(), series.Floats(ys).Mean()
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

func notes(t *table.Table, cols []ColumnSummary) []string {
	var out []string
	for _, name := range table.Unaddressable(t) {
		if name == "" {
			out = append(out, `Column with an empty name: read it with col("") or rename it before filtering.`)
			continue
		}
		out = append(out, fmt.Sprintf("Column %q is not an identifier: use col(%q) in expressions or run clean-names.", name, name))
	}
	for _, c := range cols {
		if strings.Contains(c.Name, "...") {
			out = append(out, fmt.Sprintf("Column %q was renamed from a duplicated header.", c.Name))
		}
		if c.NonNull == 0 && t.NRow() > 0 {
			out = append(out, fmt.Sprintf("Column %s is entirely null.", displayName(c.Name)))
		}
	}
	for _, c := range t.Columns() {
		if c.Type() != table.Category {
			continue
		}
		levels := c.Levels()
		numeric := 0
		for _, l := range levels {
			if _, ok := table.ParseNumber(l); ok {
				numeric++
			}
		}
		if numeric > 0 && numeric >= len(levels)-2 {
			out = append(out, fmt.Sprintf("Category %s has %d of %d numeric labels; convert it with --mode labels (codes are level positions, not values).", displayName(c.Name()), numeric, len(levels)))
		}
	}
	return out
}

func containsCol(list []*table.Column, c *table.Column) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

func displayName(s string) string {
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
