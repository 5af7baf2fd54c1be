package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := New(&buf, Options{Level: "info", Format: "json"})
	require.NoError(t, err)
	defer cleanup()

	logger.Debug("hidden")
	logger.Info("join completed", slog.Int("result_rows", 3))
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"result_rows":3`)
}

func TestDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(&buf, Options{})
	require.NoError(t, err)
	logger.Info("quiet")
	logger.Warn("duplicate column name renamed")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestInvalidOptions(t *testing.T) {
	_, _, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)
	_, _, err = New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	assert.True(t, m.Enabled(context.Background(), slog.LevelDebug))
	logger := slog.New(m).With(slog.String("op", "melt"))
	logger.Info("melt")
	assert.Contains(t, a.String(), "op=melt")
	assert.Empty(t, b.String())
}
