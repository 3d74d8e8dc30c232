package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "Arithmetic Question", "Arithmetic Question"},
		{"whitespace", "  Arithmetic Question \n", "Arithmetic Question"},
		{"double quotes", `"Arithmetic Question"`, "Arithmetic Question"},
		{"curly quotes", "“Arithmetic Question”", "Arithmetic Question"},
		{"bold", "**Arithmetic Question**", "Arithmetic Question"},
		{"quoted bold", `"**Arithmetic Question**"`, "Arithmetic Question"},
		{"heading", "## Arithmetic Question", "Arithmetic Question"},
		{"first line only", "Arithmetic Question\nHere is why I chose it.", "Arithmetic Question"},
		{"leading blank lines", "\n\n  Arithmetic Question", "Arithmetic Question"},
		{"code fence", "```\nArithmetic Question\n```", "Arithmetic Question"},
		{"code fence with tag", "```text\nArithmetic Question\n```", "Arithmetic Question"},
		{"empty", "   ", ""},
		{"only quotes", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTitle(tt.raw))
		})
	}
}

func TestCleanTitleClipsLongTitles(t *testing.T) {
	title := CleanTitle(strings.Repeat("ä", 200))
	assert.Equal(t, maxTitleRunes, utf8.RuneCountInString(title))
}

func TestClipRunes(t *testing.T) {
	assert.Equal(t, "héllo", ClipRunes("héllo world", 5))
	assert.Equal(t, "short", ClipRunes("short", 40))
}
