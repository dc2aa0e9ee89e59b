package strings

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world this is a long string", 15, "hello world ..."},
		{"newlines replaced with spaces", "hello\nworld", 20, "hello world"},
		{"whitespace collapsed", "  hello \t\n  world  ", 20, "hello world"},
		{"unicode is cut on rune boundaries", "日本語のテキストです", 6, "日本語..."},
		{"maxLen clamped", "hello", 1, "h..."},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "r1:t1", 28, "r1:t1"},
		{"keeps start and end", "production-us-east-1-cluster", 20, "production...cluster"},
		{"maxLen clamped", "abcdef", 0, "...f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateMiddle(tt.input, tt.maxLen))
		})
	}

	id := "5f3c1a2b-0000-4000-8000-000000000001:9a1e2b3c-0000-4000-8000-000000000002"
	got := TruncateMiddle(id, 28)
	assert.Len(t, []rune(got), 28)
	assert.Equal(t, "5f3c1a2b-0000-", got[:14])
	assert.Equal(t, id[len(id)-10:], got[len(got)-10:])
}
