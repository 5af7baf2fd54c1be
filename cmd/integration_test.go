package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout.
func execute(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCLI is a helper to execute the root command with args.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// isolate points HOME at a temp dir so no user config is read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCLI_MeltPivotRoundTrip(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, home, "rounds.csv", "Round,PlayerA,PlayerB\n1,10,12\n2,NA,9\n3,7,\n")
	long := filepath.Join(home, "long.csv")

	runCLI(t, "melt", in, "--id", "Round", "--names-to", "player", "--values-to", "score", "-o", long)
	b, err := os.ReadFile(long)
	require.NoError(t, err)
	assert.Equal(t, "Round,player,score\n1,PlayerA,10\n1,PlayerB,12\n2,PlayerA,\n2,PlayerB,9\n3,PlayerA,7\n3,PlayerB,\n", string(b))

	out := runCLI(t, "pivot", long, "--id", "Round", "--names-from", "player", "--values-from", "score")
	assert.Equal(t, "Round,PlayerA,PlayerB\n1,10,12\n2,,9\n3,7,\n", out)
}

func TestCLI_EmptyColumnName(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, home, "raw.csv", ",score\na,1\nb,3\n")

	out := runCLI(t, "rename", in, "--from", "", "--to", "id")
	assert.Equal(t, "id,score\na,1\nb,3\n", out)

	out = runCLI(t, "filter", in, "--where", `col("") == "b"`)
	assert.Equal(t, ",score\nb,3\n", out)

	_, err := execute("filter", in, "--where", "id == 'b'")
	var ie *table.IdentifierError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "id", ie.Identifier)
	assert.Equal(t, []string{""}, ie.Unaddressable)

	out = runCLI(t, "clean-names", in)
	assert.True(t, strings.HasPrefix(out, "x,score\n"))
}

func TestCLI_JoinMismatchedKeys(t *testing.T) {
	home := isolate(t)
	left := writeFile(t, home, "left.csv", "id,x\n1,a\n2,b\n")
	right := writeFile(t, home, "right.csv", "key,y\n2,B\n3,C\n")

	out := runCLI(t, "join", left, right, "--how", "full", "--by", "id=key")
	assert.Equal(t, "id,x,y\n1,a,\n2,b,B\n3,,C\n", out)

	out = runCLI(t, "join", left, right, "--by", "id=key", "--null-string", "NA")
	assert.Equal(t, "id,x,y\n2,b,B\n", out)

	_, err := execute("join", left, right)
	assert.ErrorIs(t, err, table.ErrNoKeys)
}

func TestCLI_ConvertCodesVersusLabels(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, home, "codes.csv", "id,code\na,200\nb,10\nc,3000\nd,N/A\n")

	out := runCLI(t, "convert", in, "--reader", "categorical", "--column", "code", "--to", "number", "--mode", "codes")
	assert.Equal(t, "id,code\na,1\nb,2\nc,3\nd,4\n", out)

	out = runCLI(t, "convert", in, "--reader", "categorical", "--column", "code", "--to", "number", "--coerce")
	assert.Equal(t, "id,code\na,200\nb,10\nc,3000\nd,\n", out)

	_, err := execute("convert", in, "--reader", "categorical", "--column", "code", "--to", "number")
	var pe *table.ParseError
	assert.True(t, errors.As(err, &pe))

	// the tidy reader with N/A as a null token reads the column as numbers
	out = runCLI(t, "recode", in, "--na", "N/A", "--column", "code", "--into", "size", "--threshold", "100", "--labels", "small,large")
	assert.Equal(t, "id,code,size\na,200,large\nb,10,small\nc,3000,large\nd,,\n", out)
}

func TestCLI_CleanAndMutate(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, home, "cities.csv", "city,pop\n  São   Paulo ,12\nZürich,0.4\n")

	out := runCLI(t, "clean", in, "--ops", "squish,strip_accents,lower")
	assert.Equal(t, "city,pop\nsao paulo,12\nzurich,0.4\n", out)

	out = runCLI(t, "mutate", in, "--column", "big", "--expr", `"yes" if pop > 1 else "no"`)
	assert.True(t, strings.HasSuffix(out, ",12,yes\nZürich,0.4,no\n"))
}

func TestCLI_RunRecipeWithManifest(t *testing.T) {
	home := isolate(t)
	writeFile(t, home, "proj/rounds.csv", "Round,PlayerA,PlayerB\n1,10,12\n2,NA,9\n")
	recipePath := writeFile(t, home, "proj/recipe.yaml", `
name: rounds
inputs:
  - path: rounds.csv
steps:
  - op: melt
    id: [Round]
    names_to: player
    values_to: score
    drop_na: true
  - op: write
    path: out/long.csv
`)
	manifest := filepath.Join(home, "manifest.json")
	runCLI(t, "run", recipePath, "--manifest", manifest)

	b, err := os.ReadFile(filepath.Join(home, "proj", "out", "long.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Round,player,score\n1,PlayerA,10\n1,PlayerB,12\n2,PlayerB,9\n", string(b))

	var m struct {
		RunID string `json:"run_id"`
		Steps []struct {
			Op   string `json:"op"`
			Rows int    `json:"rows"`
		} `json:"steps"`
	}
	raw, err := os.ReadFile(manifest)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.NotEmpty(t, m.RunID)
	require.Len(t, m.Steps, 2)
	assert.Equal(t, 3, m.Steps[0].Rows)
}

func TestCLI_InitRefusesOverwrite(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "recipe.yaml")
	runCLI(t, "init", p, "--input", "survey.csv")
	out := runCLI(t, "run", p, "--dry-run")
	assert.Contains(t, out, "is valid")

	_, err := execute("init", p)
	assert.ErrorContains(t, err, "already exists")
	runCLI(t, "init", p, "--force")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	runCLI(t, "config", "set", "reader", "categorical")
	_, err := os.Stat(filepath.Join(home, ".tidyloom", "config.yaml"))
	require.NoError(t, err)

	out := runCLI(t, "config", "show")
	assert.Contains(t, out, "reader: categorical")

	// the configured reader now applies to table commands
	in := writeFile(t, home, "codes.csv", "id,code\na,200\nb,N/A\n")
	out = runCLI(t, "convert", in, "--column", "code", "--to", "number", "--mode", "codes")
	assert.Equal(t, "id,code\na,1\nb,2\n", out)

	_, err = execute("config", "set", "nope", "1")
	assert.Error(t, err)
}
