package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "QTREE_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput cleans one raw answer by enforcing the size limit,
// validating UTF-8 and stripping control characters other than
// newline, tab and carriage return.
func SanitizeInput(input string) (string, error) {
	limit := getMaxInputSize()
	if len(input) > limit {
		// Oversized answers are rejected, never truncated.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(input, isUnsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !isUnsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// SanitizeValue applies SanitizeInput to a string or to every element of a
// string list. Other values pass through unchanged.
func SanitizeValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return SanitizeInput(x)
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			clean, err := SanitizeInput(s)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			clean, err := SanitizeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil
	}
	return v, nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
