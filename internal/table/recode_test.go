package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdTwoLabels(t *testing.T) {
	tb := MustNew("t", Numbers("time", 9.5, 10, 12, nan()))
	out, err := Threshold(tb, "time", "speed", 10, "fast", "slow")
	require.NoError(t, err)
	c, _ := out.Column("speed")
	assert.Equal(t, Category, c.Type())
	assert.Equal(t, []string{"fast", "slow"}, c.Levels())
	assert.Equal(t, []string{"fast", "slow", "slow", ""}, texts(c))
	assert.True(t, c.Value(3).IsNull())
}

func TestCutIntervals(t *testing.T) {
	tb := MustNew("t", Numbers("x", 0, 5, 10, 15, 20))
	left, err := Cut(tb, CutSpec{Column: "x", Breaks: []float64{5, 15}, Labels: []string{"low", "mid", "high"}})
	require.NoError(t, err)
	c, _ := left.Column("x")
	assert.Equal(t, []string{"low", "mid", "mid", "high", "high"}, texts(c))

	right, err := Cut(tb, CutSpec{Column: "x", Into: "band", Breaks: []float64{5, 15}, Labels: []string{"low", "mid", "high"}, Right: true})
	require.NoError(t, err)
	c, _ = right.Column("band")
	assert.Equal(t, []string{"low", "low", "mid", "mid", "high"}, texts(c))
	assert.Equal(t, []string{"low", "mid", "high"}, c.Levels())
}

func TestCutErrors(t *testing.T) {
	tb := MustNew("t", Numbers("x", 1), Strings("s", "a"))
	_, err := Cut(tb, CutSpec{Column: "s", Breaks: []float64{1}, Labels: []string{"a", "b"}})
	var te *TypeError
	require.ErrorAs(t, err, &te)

	_, err = Cut(tb, CutSpec{Column: "x", Breaks: []float64{1}, Labels: []string{"a"}})
	assert.Error(t, err)

	_, err = Cut(tb, CutSpec{Column: "x", Breaks: []float64{2, 1}, Labels: []string{"a", "b", "c"}})
	assert.Error(t, err)
}
