package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOptions_NormalizesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOptions(&buf, slog.LevelInfo, FormatText)

	logger.Debug("hidden")
	logger.Warn("call failed", "error", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "error=")
}

func TestNewWithOptions_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOptions(&buf, slog.LevelDebug, FormatJSON)

	logger.Debug("node_enter", "node", "env")
	assert.JSONEq(t, `{"level":"DEBUG","msg":"node_enter","node":"env"}`, removeTime(t, buf.Bytes()))
}

func removeTime(t *testing.T, line []byte) string {
	t.Helper()
	idx := bytes.Index(line, []byte(`"level"`))
	require.Positive(t, idx)
	return "{" + string(bytes.TrimSpace(line[idx:]))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
