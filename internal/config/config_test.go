package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tidy", c.Reader)
	assert.Nil(t, c.NullTokens)
	assert.Equal(t, [2]string{".x", ".y"}, c.Suffixes())
	assert.Equal(t, 5, c.SampleRows)
	assert.Equal(t, uint64(100000), c.MaxExprSteps)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestSaveLoadRoundTripAndEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	c := &Global{}
	require.NoError(t, c.Set("reader", "categorical"))
	require.NoError(t, c.Set("null_tokens", ",NA,N/A"))
	require.NoError(t, c.Set("join_suffixes", "_left,_right"))
	require.NoError(t, c.Set("sample_rows", "3"))
	require.NoError(t, Save(c, p))

	loaded, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "categorical", loaded.Reader)
	assert.Equal(t, []string{"", "NA", "N/A"}, loaded.NullTokens)
	assert.Equal(t, [2]string{"_left", "_right"}, loaded.Suffixes())
	assert.Equal(t, 3, loaded.SampleRows)

	t.Setenv("TIDYLOOM_READER", "tidy")
	loaded, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, "tidy", loaded.Reader)
}

func TestSetRejectsBadInput(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("nope", "1"))
	assert.Error(t, c.Set("sample_rows", "many"))
	assert.Error(t, c.Set("join_suffixes", ".x"))
}

func TestLoadMalformedExplicitFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("reader: [unclosed"), 0o644))
	_, err := Load(p)
	assert.Error(t, err)
}
