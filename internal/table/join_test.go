package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people() *Table {
	return MustNew("people",
		Strings("person_id", "p1", "p2", "p3", "p4"),
		Strings("name", "Ana", "Bo", "Cy", "Di"),
	)
}

func visits() *Table {
	return MustNew("visits",
		Strings("PersonID", "p2", "p3", "p5"),
		Numbers("visits", 7, 1, 4),
	)
}

var byPerson = []KeyPair{{Left: "person_id", Right: "PersonID"}}

func TestJoinArithmetic(t *testing.T) {
	n, m, common := 4, 3, 2
	cases := []struct {
		kind JoinKind
		rows int
	}{
		{InnerJoin, common},
		{LeftJoin, n},
		{RightJoin, m},
		{FullJoin, n + m - common},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			out, err := Join(people(), visits(), JoinSpec{Kind: tc.kind, Keys: byPerson})
			require.NoError(t, err)
			assert.Equal(t, tc.rows, out.NRow())
			assert.Equal(t, []string{"person_id", "name", "visits"}, out.Names())
			if tc.kind == InnerJoin {
				assert.LessOrEqual(t, out.NRow(), min(n, m))
			}
		})
	}
}

func TestFullJoinRowsAndNulls(t *testing.T) {
	out, err := Join(people(), visits(), JoinSpec{Kind: FullJoin, Keys: byPerson})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"person_id", "name", "visits"},
		{"p1", "Ana", ""},
		{"p2", "Bo", "7"},
		{"p3", "Cy", "1"},
		{"p4", "Di", ""},
		{"p5", "", "4"},
	}, out.Records(""))
	v, _ := out.Column("visits")
	assert.True(t, v.Value(0).IsNull())
}

func TestRightJoinTakesKeysFromRight(t *testing.T) {
	out, err := Join(people(), visits(), JoinSpec{Kind: RightJoin, Keys: byPerson})
	require.NoError(t, err)
	ids, _ := out.Column("person_id")
	assert.Equal(t, []string{"p2", "p3", "p5"}, texts(ids))
}

func TestJoinWithoutSharedColumnsFails(t *testing.T) {
	_, err := Join(people(), visits(), JoinSpec{Kind: LeftJoin})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoKeys))
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	assert.Contains(t, ke.Error(), "left=right")
}

func TestJoinInfersSharedKeys(t *testing.T) {
	renamed, err := visits().Rename("PersonID", "person_id")
	require.NoError(t, err)
	out, err := Join(people(), renamed, JoinSpec{Kind: InnerJoin})
	require.NoError(t, err)
	assert.Equal(t, 2, out.NRow())
}

func TestJoinMissingKeyColumn(t *testing.T) {
	_, err := Join(people(), visits(), JoinSpec{Keys: []KeyPair{{Left: "person_id", Right: "id"}}})
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "id", ke.Right)
	assert.False(t, errors.Is(err, ErrNoKeys))
}

func TestJoinNullsNeverMatch(t *testing.T) {
	lk, _ := NewColumn("k", String, []Value{Null(), Str("a")})
	rk, _ := NewColumn("k", String, []Value{Null(), Str("a")})
	left := MustNew("l", lk, Numbers("x", 1, 2))
	right := MustNew("r", rk, Numbers("y", 3, 4))
	out, err := Join(left, right, JoinSpec{Kind: InnerJoin})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"k", "x", "y"}, {"a", "2", "4"}}, out.Records(""))

	full, err := Join(left, right, JoinSpec{Kind: FullJoin})
	require.NoError(t, err)
	assert.Equal(t, 3, full.NRow())
}

func TestJoinManyToMany(t *testing.T) {
	left := MustNew("l", Strings("k", "a", "a", "b"), Numbers("x", 1, 2, 3))
	right := MustNew("r", Strings("k", "a", "a"), Numbers("y", 10, 20))
	out, err := Join(left, right, JoinSpec{Kind: LeftJoin})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"k", "x", "y"},
		{"a", "1", "10"},
		{"a", "1", "20"},
		{"a", "2", "10"},
		{"a", "2", "20"},
		{"b", "3", ""},
	}, out.Records(""))
}

func TestJoinSuffixesCollidingColumns(t *testing.T) {
	left := MustNew("l", Strings("k", "a"), Numbers("v", 1))
	right := MustNew("r", Strings("k", "a"), Numbers("v", 2))
	out, err := Join(left, right, JoinSpec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "v.x", "v.y"}, out.Names())

	out, err = Join(left, right, JoinSpec{Suffixes: [2]string{"_l", "_r"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "v_l", "v_r"}, out.Names())
}

func TestJoinNumberAndTextKeysMatchByText(t *testing.T) {
	left := MustNew("l", Numbers("id", 1, 2))
	right := MustNew("r", Strings("code", "2", "3"), Strings("label", "two", "three"))
	out, err := Join(left, right, JoinSpec{Kind: InnerJoin, Keys: []KeyPair{{Left: "id", Right: "code"}}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "label"}, {"2", "two"}}, out.Records(""))
}

func TestJoinKeepsLeftKeyTypeUnlessRightRowsAdded(t *testing.T) {
	left := MustNew("l", Numbers("id", 1, 2))
	right := MustNew("r", Strings("rid", "2", "3"), Strings("label", "two", "three"))
	keys := []KeyPair{{Left: "id", Right: "rid"}}

	for _, kind := range []JoinKind{InnerJoin, LeftJoin} {
		out, err := Join(left, right, JoinSpec{Kind: kind, Keys: keys})
		require.NoError(t, err)
		id, err := out.Column("id")
		require.NoError(t, err)
		assert.Equal(t, Number, id.Type(), kind.String())
	}

	out, err := Join(left, right, JoinSpec{Kind: FullJoin, Keys: keys})
	require.NoError(t, err)
	id, err := out.Column("id")
	require.NoError(t, err)
	assert.Equal(t, String, id.Type())
	assert.Equal(t, [][]string{{"id", "label"}, {"1", ""}, {"2", "two"}, {"3", "three"}}, out.Records(""))
}

func TestParseKeysAndKind(t *testing.T) {
	keys, err := ParseKeys([]string{"a=b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []KeyPair{{Left: "a", Right: "b"}, {Left: "c", Right: "c"}}, keys)

	for in, want := range map[string]JoinKind{"inner": InnerJoin, "LEFT": LeftJoin, "right": RightJoin, "outer": FullJoin} {
		got, err := ParseJoinKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = ParseJoinKind("cross")
	assert.Error(t, err)
}
