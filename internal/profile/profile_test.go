package profile

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

func sample() *table.Table {
	return table.MustNew("scores.csv",
		table.Strings("team", "a", "a", "b", "b"),
		table.Numbers("points", 10, 20, 30, math.NaN()),
		table.Numbers("minutes", 1, 2, 3, 4),
		table.Categories("grade", "200", "10", "3000", "10"),
		table.Strings("", "x", "y", "z", "w"),
	)
}

func TestBuildSummaries(t *testing.T) {
	rep, err := Build(sample(), Options{GroupBy: []string{"team"}, Correlations: true})
	require.NoError(t, err)
	require.Len(t, rep.Cols, 5)
	assert.Equal(t, 4, rep.Rows)

	pts := rep.Cols[1]
	assert.Equal(t, table.Number, pts.Type)
	assert.Equal(t, 3, pts.NonNull)
	assert.Equal(t, 1, pts.Missing)
	assert.InDelta(t, 20.0, pts.Mean, 1e-9)
	assert.InDelta(t, 10.0, pts.Min, 1e-9)
	assert.InDelta(t, 30.0, pts.Max, 1e-9)
	assert.InDelta(t, 10.0, pts.Std, 1e-9)

	grade := rep.Cols[3]
	require.NotEmpty(t, grade.TopLevels)
	assert.Equal(t, LevelCount{Label: "10", Count: 2}, grade.TopLevels[0])

	require.Len(t, rep.Groups, 2)
	assert.Equal(t, "team=a", rep.Groups[0].Key)
	assert.Equal(t, 2, rep.Groups[0].Size)
	assert.InDelta(t, 15.0, rep.Groups[0].Metrics["points"].Mean, 1e-9)
	assert.Equal(t, 1, rep.Groups[1].Metrics["points"].Count)

	require.NotEmpty(t, rep.Pairs)
	assert.InDelta(t, 1.0, rep.Pairs[0].R, 1e-9)
}

func TestBuildSingleValueHasZeroStd(t *testing.T) {
	tb := table.MustNew("one", table.Numbers("x", 7))
	rep, err := Build(tb, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, rep.Cols[0].Std)
	assert.False(t, math.IsNaN(rep.Cols[0].Mean))
}

func TestBuildUnknownGroupColumn(t *testing.T) {
	_, err := Build(sample(), Options{GroupBy: []string{"nope"}})
	var ce *table.ColumnError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "nope", ce.Column)
}

func TestNotesFlagAwkwardColumns(t *testing.T) {
	rep, err := Build(sample(), DefaultOptions())
	require.NoError(t, err)
	joined := strings.Join(rep.Notes, "\n")
	assert.Contains(t, joined, "empty name")
	assert.Contains(t, joined, "Category grade has 3 of 3 numeric labels")
}

func TestMarkdownSections(t *testing.T) {
	rep, err := Build(sample(), Options{GroupBy: []string{"team"}, NullString: "NA"})
	require.NoError(t, err)
	md := rep.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "Table: scores.csv", "Rows: 4", "[SCHEMA]", "- points: number (non-null 3, missing 25.0%)", "[GROUP-BY SUMMARY]", "- team=a (n=2)", "[HEAD]", "| team | points | minutes | grade | (unnamed) |", "| b | NA | 4 | 10 | w |", "[NOTES]"} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "[CORRELATIONS]")
}

func TestNegativeSampleRowsDisablesHead(t *testing.T) {
	rep, err := Build(sample(), Options{SampleRows: -1})
	require.NoError(t, err)
	assert.Empty(t, rep.Samples)
	assert.NotContains(t, rep.Markdown(), "[HEAD]")
}
