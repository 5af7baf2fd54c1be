package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	cases := map[string]string{
		"":                    "x",
		"PlayerA":             "player_a",
		"Concentration (g/L)": "concentration_g_l",
		"1st place":           "x1st_place",
		"if":                  "if_",
		"% done":              "percent_done",
		"Café":                "cafe",
		"already_clean":       "already_clean",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanName(in), "CleanName(%q)", in)
	}
}

func TestCleanNamesDeduplicates(t *testing.T) {
	tb := MustNew("t", Numbers("a", 1), Numbers("A", 2), Numbers("", 3), Numbers("a_2", 4))
	out := CleanNames(tb)
	assert.Equal(t, []string{"a", "a_2", "x", "a_2_2"}, out.Names())
	assert.Empty(t, Unaddressable(out))
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("score_2"))
	assert.True(t, ValidIdentifier("_x"))
	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier("2x"))
	assert.False(t, ValidIdentifier("a b"))
	assert.False(t, ValidIdentifier("not"))
	assert.Equal(t, []string{"", "Temp (°F)"}, Unaddressable(MustNew("t", Numbers("ok", 1), Numbers("", 1), Numbers("Temp (°F)", 1))))
}
