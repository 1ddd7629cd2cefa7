package services

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"single line fence", "```json {\"a\":1}```", `{"a":1}`},
		{"fence without tag starting with json", "```\n[1,2]\n```", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripCodeFence(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripCodeFence(got), "stripping twice must not change the result")
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Go developer\nRemote", CleanText("\n  Go developer  \n\n\t\n Remote \n"))
	assert.Equal(t, "", CleanText("   \n  "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "h...", truncate("héllo", 2))
	assert.True(t, utf8.ValidString(truncate("résumé", 5)))
}
