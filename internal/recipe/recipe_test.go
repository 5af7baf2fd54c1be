package recipe

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const roundsCSV = `Round,PlayerA,PlayerB
1,10,12
2,NA,9
3,7,
`

const playersCSV = `player,team
PlayerA,red
PlayerB,blue
`

func TestRunReshapeJoinWrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rounds.csv", roundsCSV)
	writeFile(t, dir, "players.csv", playersCSV)
	p := writeFile(t, dir, "recipe.yaml", `
name: rounds
inputs:
  - path: rounds.csv
  - path: players.csv
steps:
  - op: melt
    table: rounds
    id: [Round]
    names_to: player
    values_to: score
    drop_na: true
    into: long
  - op: join
    with: players
    how: left
  - op: filter
    where: score >= 9
  - op: arrange
    by: [-score]
  - op: write
    path: out/long.csv
`)
	r, err := Load(p)
	require.NoError(t, err)

	rn := NewRunner(r, Options{Stdout: &bytes.Buffer{}})
	m, err := rn.Run(context.Background())
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "out", "long.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Round,player,score,team\n1,PlayerB,12,blue\n1,PlayerA,10,red\n2,PlayerB,9,blue\n", string(out))

	assert.NotEmpty(t, m.RunID)
	require.Len(t, m.Inputs, 2)
	assert.Equal(t, "rounds", m.Inputs[0].Name)
	require.Len(t, m.Steps, 5)
	assert.Equal(t, "long", m.Steps[0].Table)
	assert.Equal(t, 4, m.Steps[0].Rows)
	assert.Equal(t, []string{filepath.Join(dir, "out", "long.csv")}, m.Outputs)

	long, ok := rn.Table("long")
	require.True(t, ok)
	assert.Equal(t, 3, long.NRow())
	rounds, _ := rn.Table("rounds")
	assert.Equal(t, 3, rounds.NRow())
}

func TestRunEmptyNameRenameThenFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "in.csv", ",value\na,1\nb,5\nc,9\n")
	p := writeFile(t, dir, "recipe.yaml", `
inputs:
  - path: in.csv
steps:
  - op: rename
    from: ""
    to: id
  - op: filter
    where: value > 2
  - op: write
`)
	r, err := Load(p)
	require.NoError(t, err)
	var stdout bytes.Buffer
	_, err = NewRunner(r, Options{Stdout: &stdout}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id,value\nb,5\nc,9\n", stdout.String())
}

func TestRunStopsAtFirstFailingStep(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "in.csv", ",value\na,1\n")
	p := writeFile(t, dir, "recipe.yaml", `
inputs:
  - path: in.csv
steps:
  - op: select
    columns: [value]
  - op: filter
    where: missing > 1
  - op: write
    path: never.csv
`)
	r, err := Load(p)
	require.NoError(t, err)
	m, err := NewRunner(r, Options{}).Run(context.Background())

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Index)
	assert.Equal(t, "filter", se.Op)
	var ie *table.IdentifierError
	assert.True(t, errors.As(err, &ie))
	assert.Len(t, m.Steps, 1)
	assert.NotEmpty(t, m.Error)
	assert.NoFileExists(t, filepath.Join(dir, "never.csv"))
}

func TestRunCategoricalRecodeConvertSQLite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "codes.csv", "id,code\na,200\nb,10\nc,3000\nd,N/A\n")
	p := writeFile(t, dir, "recipe.yaml", `
inputs:
  - path: codes.csv
    reader: categorical
steps:
  - op: convert
    column: code
    type: number
    mode: labels
    coerce: true
  - op: recode
    column: code
    into: size
    threshold: 100
    labels: [small, large]
  - op: export_sqlite
    path: codes.db
    sql_table: codes
`)
	r, err := Load(p)
	require.NoError(t, err)
	rn := NewRunner(r, Options{})
	_, err = rn.Run(context.Background())
	require.NoError(t, err)

	got, _ := rn.Table("codes")
	size, err := got.Column("size")
	require.NoError(t, err)
	assert.Equal(t, table.Category, size.Type())
	assert.Equal(t, []string{"small", "large"}, size.Levels())
	assert.Equal(t, "large", size.Value(0).String())
	assert.True(t, size.Value(3).IsNull())

	db, err := sql.Open("sqlite", filepath.Join(dir, "codes.db"))
	require.NoError(t, err)
	defer db.Close()
	var sum float64
	require.NoError(t, db.QueryRow(`SELECT SUM(code) FROM codes`).Scan(&sum))
	assert.Equal(t, 3210.0, sum)
}

func TestParseRejectsBadRecipes(t *testing.T) {
	_, err := Parse([]byte("steps: []\n"))
	assert.ErrorContains(t, err, "no inputs")

	_, err = Parse([]byte("inputs:\n  - path: a.csv\n  - path: b/a.csv\n"))
	assert.ErrorContains(t, err, "duplicate table name")

	_, err = Parse([]byte("inputs:\n  - path: a.csv\nsteps:\n  - op: explode\n"))
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)

	_, err = Parse([]byte("inputs:\n  - path: a.csv\n    colour: red\n"))
	assert.Error(t, err)
}

func TestManifestSave(t *testing.T) {
	m := newManifest("demo")
	m.Steps = append(m.Steps, StepRecord{Index: 1, Op: "melt", Table: "long", Rows: 4, Cols: 3})
	p := filepath.Join(t.TempDir(), "runs", "manifest.json")
	require.NoError(t, m.Save(p))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	var back Manifest
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, m.RunID, back.RunID)
	assert.Equal(t, "long", back.Steps[0].Table)
}

func TestStarterParses(t *testing.T) {
	r, err := Parse(Starter("data/survey.csv"))
	require.NoError(t, err)
	assert.Equal(t, "survey", r.Name)
	assert.Equal(t, "data/survey.csv", r.Inputs[0].Path)
	assert.Equal(t, "tidy", r.Inputs[0].Reader)
	assert.Equal(t, "clean_names", r.Steps[0].Op)
}
