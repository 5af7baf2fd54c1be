package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nan() float64 { return math.NaN() }

func rounds() *Table {
	return MustNew("rounds",
		Numbers("Round", 1, 2),
		Numbers("PlayerA", 12.5, 11),
		Numbers("PlayerB", 14, 13.25),
	)
}

func TestMeltPlayers(t *testing.T) {
	tall, err := Melt(rounds(), MeltSpec{ID: []string{"Round"}, NamesTo: "Player", ValuesTo: "Time"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Round", "Player", "Time"}, tall.Names())
	assert.Equal(t, 4, tall.NRow())
	assert.Equal(t, [][]string{
		{"Round", "Player", "Time"},
		{"1", "PlayerA", "12.5"},
		{"1", "PlayerB", "14"},
		{"2", "PlayerA", "11"},
		{"2", "PlayerB", "13.25"},
	}, tall.Records(""))
	timeCol, _ := tall.Column("Time")
	assert.Equal(t, Number, timeCol.Type())

	// Every output cell matches the original (round, player) cell.
	wide := rounds()
	for i := 0; i < tall.NRow(); i++ {
		r := tall.Row(i)
		round, _ := r.Get("Round")
		player, _ := r.Get("Player")
		got, _ := r.Get("Time")
		src, _ := wide.Column(player.String())
		rf, _ := round.Number()
		assert.True(t, src.Value(int(rf)-1).Equal(got), "row %d", i)
	}
}

func TestMeltPivotRoundTrip(t *testing.T) {
	wide := MustNew("w",
		Strings("site", "north", "south", "east"),
		Numbers("2019", 1, 2, nan()),
		Numbers("2020", 4, 5, 6),
	)
	tall, err := Melt(wide, MeltSpec{ID: []string{"site"}, NamesTo: "year", ValuesTo: "count"})
	require.NoError(t, err)
	assert.Equal(t, 6, tall.NRow())

	back, err := Pivot(tall, PivotSpec{ID: []string{"site"}, NamesFrom: "year", ValuesFrom: "count"})
	require.NoError(t, err)
	assert.Equal(t, wide.Records(""), back.Records(""))
}

func TestMeltMixedTypesBecomeText(t *testing.T) {
	tb := MustNew("m", Numbers("id", 1), Numbers("n", 2), Categories("c", "lo"))
	tall, err := Melt(tb, MeltSpec{ID: []string{"id"}})
	require.NoError(t, err)
	v, _ := tall.Column("value")
	assert.Equal(t, String, v.Type())
	assert.Equal(t, []string{"2", "lo"}, texts(v))
}

func TestMeltDropNulls(t *testing.T) {
	tb := MustNew("m", Strings("id", "a", "b"), Numbers("x", 1, nan()), Numbers("y", nan(), 2))
	tall, err := Melt(tb, MeltSpec{ID: []string{"id"}, DropNulls: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name", "value"}, {"a", "x", "1"}, {"b", "y", "2"}}, tall.Records(""))
}

func TestMeltErrors(t *testing.T) {
	_, err := Melt(rounds(), MeltSpec{ID: []string{"nope"}})
	var ce *ColumnError
	require.ErrorAs(t, err, &ce)

	_, err = Melt(rounds(), MeltSpec{ID: []string{"Round"}, Values: []string{"Round"}})
	require.ErrorAs(t, err, &ce)

	_, err = Melt(rounds(), MeltSpec{ID: []string{"Round", "PlayerA", "PlayerB"}})
	require.Error(t, err)
}

func TestPivotFillsMissingWithNull(t *testing.T) {
	tall := MustNew("t",
		Strings("id", "a", "a", "b"),
		Strings("key", "x", "y", "y"),
		Numbers("val", 1, 2, 3),
	)
	wide, err := Pivot(tall, PivotSpec{NamesFrom: "key", ValuesFrom: "val"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "x", "y"}, {"a", "1", "2"}, {"b", "", "3"}}, wide.Records(""))
}

func TestPivotDuplicateEntryIsKeyError(t *testing.T) {
	tall := MustNew("t",
		Strings("id", "a", "a"),
		Strings("key", "x", "x"),
		Numbers("val", 1, 2),
	)
	_, err := Pivot(tall, PivotSpec{ID: []string{"id"}, NamesFrom: "key", ValuesFrom: "val"})
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	assert.Contains(t, ke.Error(), "duplicate entry")
}

func TestPivotNullNameIsKeyError(t *testing.T) {
	names, err := NewColumn("key", String, []Value{Str("x"), Null()})
	require.NoError(t, err)
	tall := MustNew("t", Strings("id", "a", "b"), names, Numbers("val", 1, 2))
	_, err = Pivot(tall, PivotSpec{ID: []string{"id"}, NamesFrom: "key", ValuesFrom: "val"})
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
}
