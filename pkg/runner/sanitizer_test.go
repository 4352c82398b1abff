package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain answer", "my-service", "my-service", nil},
		{"multi-line description", "first\nsecond\tindented\r", "first\nsecond\tindented\r", nil},
		{"pasted colors", "\x1b[1mprod\x1b[0m", "[1mprod[0m", nil},
		{"null and bell", "de\x00v\x07", "dev", nil},
		{"at the limit", strings.Repeat("a", DefaultMaxInputSize), strings.Repeat("a", DefaultMaxInputSize), nil},
		{"over the limit", strings.Repeat("a", DefaultMaxInputSize+1), "", ErrInputTooLarge},
		{"broken encoding", "\xbd\xb2\x3d\xbc", "", ErrInvalidUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_LimitFromEnvironment(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "4")

	_, err := SanitizeInput("https")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInput("http")
	require.NoError(t, err)
	assert.Equal(t, "http", got)

	t.Setenv(EnvMaxInputSize, "not-a-number")
	_, err = SanitizeInput("https")
	assert.NoError(t, err, "invalid limits fall back to the default")
}

func TestSanitizeValue(t *testing.T) {
	got, err := SanitizeValue([]any{"a\x00b", 3.0, []string{"\x07c"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"ab", 3.0, []string{"c"}}, got)

	got, err = SanitizeValue(map[string]any{"id": "x\x00"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "x\x00"}, got, "objects pass through")

	t.Setenv(EnvMaxInputSize, "2")
	_, err = SanitizeValue([]string{"ok", "too long"})
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
